package audit

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sink receives audit events.
type Sink interface {
	Record(ctx context.Context, event *Event) error
}

// NopSink discards all events.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(ctx context.Context, event *Event) error { return nil }

// StreamSink writes events as structured JSON lines.
type StreamSink struct {
	log *logrus.Logger
}

// NewStreamSink creates a sink writing JSON events to out.
func NewStreamSink(out io.Writer) *StreamSink {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)

	return &StreamSink{log: log}
}

// Record implements Sink.
func (s *StreamSink) Record(ctx context.Context, event *Event) error {
	if event == nil {
		return nil
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	fields := logrus.Fields{
		"event_type": string(event.Type),
		"status":     string(event.Status),
		"event_time": ts.Format(time.RFC3339Nano),
	}
	if event.Username != "" {
		fields["username"] = event.Username
	}
	if event.Operation != "" {
		fields["operation"] = event.Operation
	}
	if event.Entity != "" {
		fields["entity"] = event.Entity
	}

	entry := s.log.WithFields(fields)
	if event.Status == EventStatusDenied || event.Status == EventStatusFailure {
		entry.Warn(event.Message)
	} else {
		entry.Info(event.Message)
	}
	return nil
}

// MemorySink collects events in memory. Test helper.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record implements Sink.
func (s *MemorySink) Record(ctx context.Context, event *Event) error {
	if event == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

// Events returns a copy of the recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
