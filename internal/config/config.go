package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTP        HTTP
	ChessAPI    ChessAPI
	Log         Log
	TelegramBot TelegramBot
}

type HTTP struct {
	Addr         string        `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"5s" validate:"gt=0"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"10s" validate:"gt=0"`
	// APIRateLimit is the number of JSON API requests allowed per client IP per minute.
	APIRateLimit int           `envconfig:"HTTP_API_RATE_LIMIT" default:"60" validate:"gte=1"`
	CORSOrigins  []string      `envconfig:"HTTP_CORS_ORIGINS" default:"*"`
}

type ChessAPI struct {
	BaseURL         string        `envconfig:"CHESSCOM_BASE_URL" default:"https://api.chess.com/pub" validate:"required,url"`
	Timeout         time.Duration `envconfig:"CHESSCOM_TIMEOUT" default:"10s" validate:"gt=0"`
	UserAgent       string        `envconfig:"CHESSCOM_USER_AGENT" default:"gmwiki/1.0"`
	RateLimit       float64       `envconfig:"CHESSCOM_RATE_LIMIT" default:"0" validate:"gte=0"`
	RateBurst       int           `envconfig:"CHESSCOM_RATE_BURST" default:"1" validate:"gte=1"`
	BreakerFailures uint32        `envconfig:"CHESSCOM_BREAKER_FAILURES" default:"10" validate:"gte=1"`
	BreakerTimeout  time.Duration `envconfig:"CHESSCOM_BREAKER_TIMEOUT" default:"30s" validate:"gt=0"`
	FanOutLimit     int           `envconfig:"CHESSCOM_FANOUT_LIMIT" default:"0" validate:"gte=0"`
}

type Log struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`
}

type TelegramBot struct {
	Token string `envconfig:"TELEGRAM_TOKEN"`
}

func (t TelegramBot) Enabled() bool {
	return t.Token != ""
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}
