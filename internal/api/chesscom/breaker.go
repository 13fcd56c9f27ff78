package chesscom

import (
	"errors"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"github.com/omarshaarawi/gmwiki/internal/config"
	"github.com/omarshaarawi/gmwiki/internal/metrics"
)

// newBreaker opens after cfg.BreakerFailures consecutive failures of the
// guarded requests. A 404 counts as success.
func newBreaker(name string, cfg config.ChessAPI) *gobreaker.CircuitBreaker[struct{}] {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 10
	}

	metrics.BreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
