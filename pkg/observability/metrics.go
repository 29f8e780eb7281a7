package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the analytics core. A nil
// *Metrics is valid and records nothing, so metrics stay optional for
// library consumers.
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	authFailuresTotal *prometheus.CounterVec
}

// NewMetrics registers the analytics instruments on the given registerer.
// Pass prometheus.DefaultRegisterer for process-wide metrics or a fresh
// registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "epiwatch",
				Name:      "analytics_operations_total",
				Help:      "Analytics operations executed, by operation and outcome.",
			},
			[]string{"operation", "status"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "epiwatch",
				Name:      "analytics_operation_duration_seconds",
				Help:      "Wall time of analytics operations, including the store query.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		authFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "epiwatch",
				Name:      "authorization_failures_total",
				Help:      "Rejected authorization attempts, by failure kind.",
			},
			[]string{"kind"},
		),
	}
}

// ObserveOperation records one completed operation.
func (m *Metrics) ObserveOperation(operation, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveAuthFailure records one rejected authorization attempt.
func (m *Metrics) ObserveAuthFailure(kind string) {
	if m == nil {
		return
	}
	m.authFailuresTotal.WithLabelValues(kind).Inc()
}
