package chesscom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/omarshaarawi/gmwiki/internal/config"
	"github.com/omarshaarawi/gmwiki/internal/metrics"
)

const maxDrainBytes = 64 * 1024

// ErrNotFound is returned for a 404 response. It is an absence, not a failure.
var ErrNotFound = errors.New("chess.com: resource not found")

type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

type Client struct {
	httpClient *http.Client
	Config     config.ChessAPI
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[struct{}]
}

func NewClient(cfg config.ChessAPI) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		Config:     cfg,
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    newBreaker("chesscom-api", cfg),
	}
}

// Get fetches an endpoint relative to the configured base URL.
func (c *Client) Get(ctx context.Context, name, endpoint string, result interface{}) error {
	return c.GetURL(ctx, name, c.url(endpoint), result)
}

// GetURL fetches an absolute URL and decodes the JSON body into result.
// name labels the request in metrics. Per-player resources go through here,
// so a failing player never blocks requests for the others.
func (c *Client) GetURL(ctx context.Context, name, url string, result interface{}) error {
	start := time.Now()
	err := c.do(ctx, url, result)
	observe(name, start, err)
	return err
}

// GetGuarded is Get behind the circuit breaker. It is reserved for shared
// resources such as the titled-player list.
func (c *Client) GetGuarded(ctx context.Context, name, endpoint string, result interface{}) error {
	start := time.Now()
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.do(ctx, c.url(endpoint), result)
	})
	observe(name, start, err)
	return err
}

func (c *Client) url(endpoint string) string {
	return strings.TrimRight(c.Config.BaseURL, "/") + endpoint
}

func observe(name string, start time.Time, err error) {
	metrics.UpstreamDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequests.WithLabelValues(name, outcome(err)).Inc()
}

func (c *Client) do(ctx context.Context, url string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Config.UserAgent != "" {
		req.Header.Set("User-Agent", c.Config.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		return &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	default:
		return "error"
	}
}
