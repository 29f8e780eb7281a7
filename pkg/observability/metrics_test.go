package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveOperation("top", "success", 25*time.Millisecond)
	m.ObserveOperation("top", "success", 30*time.Millisecond)
	m.ObserveOperation("trend", "error", time.Millisecond)

	if got := testutil.ToFloat64(m.operationsTotal.WithLabelValues("top", "success")); got != 2 {
		t.Errorf("expected 2 successful top operations, got %v", got)
	}
	if got := testutil.ToFloat64(m.operationsTotal.WithLabelValues("trend", "error")); got != 1 {
		t.Errorf("expected 1 failed trend operation, got %v", got)
	}
}

func TestObserveAuthFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveAuthFailure("unauthorized")

	if got := testutil.ToFloat64(m.authFailuresTotal.WithLabelValues("unauthorized")); got != 1 {
		t.Errorf("expected 1 auth failure, got %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	// Must not panic.
	m.ObserveOperation("top", "success", time.Millisecond)
	m.ObserveAuthFailure("forbidden")
}
