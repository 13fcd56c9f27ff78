// Package logging wires the process-wide slog logger to a zerolog sink.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"

	"github.com/omarshaarawi/gmwiki/internal/config"
)

// New builds a zerolog logger from cfg writing to w.
func New(cfg config.Log, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Init installs a zerolog-backed slog logger as the slog default and returns it.
func Init(cfg config.Log, w io.Writer) *slog.Logger {
	logger := slog.New(NewHandler(New(cfg, w)))
	slog.SetDefault(logger)
	return logger
}
