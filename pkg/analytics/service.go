package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/epiwatch/epiwatch/pkg/apierr"
	"github.com/epiwatch/epiwatch/pkg/audit"
	"github.com/epiwatch/epiwatch/pkg/auth"
	"github.com/epiwatch/epiwatch/pkg/catalog"
	"github.com/epiwatch/epiwatch/pkg/observability"
)

// Operation names a logical analytics operation.
type Operation string

const (
	OpTopCumulative     Operation = "top"
	OpTopDelta          Operation = "new"
	OpTrend             Operation = "trend"
	OpTotal             Operation = "total"
	OpMortalityRecovery Operation = "mortality-recovery"
	OpValidate          Operation = "validate"
)

// Parameter bounds and defaults. Out-of-range values are rejected, never
// clamped; a zero value means "use the default".
const (
	DefaultLimit = 10
	MaxLimit     = 50
	DefaultDays  = 30
	MaxDays      = 365
)

// Request describes one analytics call. The token authenticates the
// caller and is consumed exactly once per request; it is never echoed
// back, logged, or audited.
type Request struct {
	Operation Operation `json:"operation"`
	Metric    string    `json:"metric,omitempty"`
	Limit     int       `json:"limit,omitempty"`
	Days      int       `json:"days,omitempty"`
	Entity    string    `json:"entity,omitempty"`
	Token     string    `json:"-"`
}

// Result is the typed success payload of an operation. Exactly one field
// besides Operation is populated, matching the operation shape.
type Result struct {
	Operation Operation         `json:"operation"`
	Entries   []RankedEntry     `json:"entries,omitempty"`
	Points    []TrendPoint      `json:"points,omitempty"`
	Total     *int64            `json:"total,omitempty"`
	Rates     []CountryRates    `json:"rates,omitempty"`
	Report    *ValidationReport `json:"report,omitempty"`
}

// Service orchestrates analytics requests: authorize, resolve the metric,
// bounds-check parameters, execute, audit. Failures short-circuit before
// any store access.
type Service struct {
	gate    *auth.Gate
	catalog *catalog.Catalog
	engine  *Engine
	sink    audit.Sink
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewService creates the orchestrating service. sink, logger and metrics
// may be nil; they degrade to no-ops.
func NewService(gate *auth.Gate, cat *catalog.Catalog, engine *Engine, sink audit.Sink, logger *observability.Logger, metrics *observability.Metrics) *Service {
	if sink == nil {
		sink = audit.NopSink{}
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Service{
		gate:    gate,
		catalog: cat,
		engine:  engine,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
	}
}

// Execute runs one analytics operation end to end.
func (s *Service) Execute(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	identity, err := s.gate.Authorize(ctx, req.Token)
	if err != nil {
		s.recordDenied(ctx, req, err)
		s.observe(req.Operation, err, start)
		return nil, err
	}

	result, err := s.dispatch(ctx, req)
	s.observe(req.Operation, err, start)
	if err != nil {
		s.logger.WithError(err).
			WithField("operation", string(req.Operation)).
			WithField("username", identity.Username).
			Warn("analytics operation failed")
		return nil, err
	}

	s.recordSuccess(ctx, req, identity)
	return result, nil
}

func (s *Service) dispatch(ctx context.Context, req Request) (*Result, error) {
	result := &Result{Operation: req.Operation}

	switch req.Operation {
	case OpTopCumulative:
		metric, limit, err := s.metricAndLimit(req)
		if err != nil {
			return nil, err
		}
		result.Entries, err = s.engine.TopByCumulative(ctx, metric.Cumulative, limit)
		if err != nil {
			return nil, err
		}
		if result.Entries == nil {
			result.Entries = []RankedEntry{}
		}

	case OpTopDelta:
		metric, limit, err := s.metricAndLimit(req)
		if err != nil {
			return nil, err
		}
		result.Entries, err = s.engine.TopByDelta(ctx, metric.Delta, limit)
		if err != nil {
			return nil, err
		}
		if result.Entries == nil {
			result.Entries = []RankedEntry{}
		}

	case OpTrend:
		metric, err := s.catalog.Resolve(req.Metric)
		if err != nil {
			return nil, err
		}
		days, err := boundedParam("days", req.Days, DefaultDays, MaxDays)
		if err != nil {
			return nil, err
		}
		result.Points, err = s.engine.Trend(ctx, metric.Delta, days)
		if err != nil {
			return nil, err
		}
		if result.Points == nil {
			result.Points = []TrendPoint{}
		}

	case OpTotal:
		metric, err := s.catalog.Resolve(req.Metric)
		if err != nil {
			return nil, err
		}
		total, err := s.engine.Total(ctx, metric.Delta)
		if err != nil {
			return nil, err
		}
		result.Total = &total

	case OpMortalityRecovery:
		limit, err := boundedParam("limit", req.Limit, DefaultLimit, MaxLimit)
		if err != nil {
			return nil, err
		}
		result.Rates, err = s.engine.MortalityRecovery(ctx, limit)
		if err != nil {
			return nil, err
		}
		if result.Rates == nil {
			result.Rates = []CountryRates{}
		}

	case OpValidate:
		entity := strings.TrimSpace(req.Entity)
		if entity == "" {
			return nil, apierr.BadRequest("entity is required for validation")
		}
		report, err := s.engine.Validate(ctx, entity)
		if err != nil {
			return nil, err
		}
		result.Report = report

	default:
		return nil, apierr.BadRequest(fmt.Sprintf("unknown operation %q", req.Operation))
	}

	return result, nil
}

// metricAndLimit resolves the metric and bounds-checks limit for the two
// ranking operations.
func (s *Service) metricAndLimit(req Request) (catalog.Metric, int, error) {
	metric, err := s.catalog.Resolve(req.Metric)
	if err != nil {
		return catalog.Metric{}, 0, err
	}
	limit, err := boundedParam("limit", req.Limit, DefaultLimit, MaxLimit)
	if err != nil {
		return catalog.Metric{}, 0, err
	}
	return metric, limit, nil
}

// boundedParam applies the default for a zero value and rejects anything
// outside [1, max].
func boundedParam(name string, value, def, max int) (int, error) {
	if value == 0 {
		return def, nil
	}
	if value < 1 || value > max {
		return 0, apierr.BadRequest(fmt.Sprintf("%s must be between 1 and %d", name, max))
	}
	return value, nil
}

func (s *Service) recordSuccess(ctx context.Context, req Request, identity *auth.Identity) {
	event := &audit.Event{
		Timestamp: time.Now().UTC(),
		Type:      audit.EventTypeAnalyticsQuery,
		Status:    audit.EventStatusSuccess,
		Username:  identity.Username,
		Operation: string(req.Operation),
		Entity:    req.Entity,
		Message:   operationMessage(req),
	}
	// Best-effort: the audit sink must never fail the request.
	if err := s.sink.Record(ctx, event); err != nil {
		s.logger.WithError(err).Warn("failed to record audit event")
	}
}

func (s *Service) recordDenied(ctx context.Context, req Request, cause error) {
	event := &audit.Event{
		Timestamp: time.Now().UTC(),
		Type:      audit.EventTypeAccessDenied,
		Status:    audit.EventStatusDenied,
		Operation: string(req.Operation),
		Message:   cause.Error(),
	}
	if err := s.sink.Record(ctx, event); err != nil {
		s.logger.WithError(err).Warn("failed to record audit event")
	}
}

func (s *Service) observe(op Operation, err error, start time.Time) {
	status := "success"
	if err != nil {
		if kind, ok := apierr.KindOf(err); ok {
			status = string(kind)
			switch kind {
			case apierr.KindUnauthorized, apierr.KindForbidden:
				s.metrics.ObserveAuthFailure(string(kind))
			}
		} else {
			status = "error"
		}
	}
	s.metrics.ObserveOperation(string(op), status, time.Since(start))
}

func operationMessage(req Request) string {
	switch req.Operation {
	case OpTopCumulative, OpTopDelta, OpTrend, OpTotal:
		return fmt.Sprintf("%s %s requested", req.Operation, req.Metric)
	case OpValidate:
		return fmt.Sprintf("validation requested for %s", req.Entity)
	default:
		return fmt.Sprintf("%s requested", req.Operation)
	}
}
