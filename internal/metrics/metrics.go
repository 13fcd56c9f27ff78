// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gmwiki_upstream_requests_total",
			Help: "Requests made to the chess.com public API by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"}, // outcome: ok, not_found, error, rejected
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gmwiki_upstream_request_duration_seconds",
			Help:    "Latency of chess.com public API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gmwiki_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	DirectoryPlayers = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gmwiki_directory_players",
			Help:    "Players returned per directory listing after dropping failed profiles",
			Buckets: []float64{0, 10, 20, 30, 40, 45, 50},
		},
	)

	LiveClocks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gmwiki_live_clocks",
			Help: "Profile views with a running time-since-online clock",
		},
	)
)
