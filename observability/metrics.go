// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the dashboard head.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP METRICS
// =============================================================================

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clusterboard_http_requests_total",
			Help: "Total HTTP requests served by the dashboard",
		},
		[]string{"path", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clusterboard_http_request_duration_seconds",
			Help:    "Dashboard HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"path"},
	)
)

// =============================================================================
// HEAD METRICS
// =============================================================================

var (
	nodeReportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clusterboard_node_reports_total",
			Help: "Total node status reports received",
		},
	)

	modulesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clusterboard_modules_loaded",
			Help: "Number of dashboard modules loaded at startup",
		},
	)
)

// =============================================================================
// PUBLIC API
// =============================================================================

// RecordHTTPRequest records one served request.
// Called from the head's HTTP middleware.
func RecordHTTPRequest(path, code string, seconds float64) {
	httpRequestsTotal.WithLabelValues(path, code).Inc()
	httpRequestDurationSeconds.WithLabelValues(path).Observe(seconds)
}

// RecordNodeReport records receipt of one node status report.
func RecordNodeReport() {
	nodeReportsTotal.Inc()
}

// SetModulesLoaded records how many modules the head loaded.
func SetModulesLoaded(n int) {
	modulesLoaded.Set(float64(n))
}
