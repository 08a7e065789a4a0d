package rest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics recorded by the client.
// Pass to NewClient via WithMetrics; nil disables recording.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RetriesTotal    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all client metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fleetctl",
				Name:      "api_requests_total",
				Help:      "Total number of API calls, by operation and outcome",
			},
			[]string{"operation", "outcome"}, // outcome=ok/error/unauthorized/rate_limited
		),
		RetriesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fleetctl",
				Name:      "api_retries_total",
				Help:      "Total retry attempts, by operation",
			},
			[]string{"operation"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fleetctl",
				Name:      "api_request_duration_seconds",
				Help:      "API call duration in seconds, including backoff waits",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// observe records one completed logical call. All methods are nil-safe.
func (m *Metrics) observe(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(seconds)
}

// retry records one retry attempt.
func (m *Metrics) retry(operation string) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(operation).Inc()
}
