// Package metrics holds the Prometheus collectors exported at /metrics.
//
// HTTP metrics:
//   - http_requests_total{method,route,status}
//   - http_request_duration_seconds{method,route}
//
// Favorites metrics:
//   - favorites_operations_total{operation,result}
//   - favorites_lock_wait_seconds{operation}
//   - favorites_ws_connections
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "route"},
	)

	FavoriteOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favorites_operations_total",
			Help: "Favorite mutations by operation and result",
		},
		[]string{"operation", "result"},
	)

	LockWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "favorites_lock_wait_seconds",
			Help:    "Time spent waiting for the per-user favorites lock",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 3},
		},
		[]string{"operation"},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "favorites_ws_connections",
			Help: "Open favorites change-notification websockets",
		},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
