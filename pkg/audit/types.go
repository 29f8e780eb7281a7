// Package audit records who did what against the analytics core. Sinks are
// fire-and-forget collaborators: recording an event must never block or fail
// the request that produced it, so callers ignore Record errors and sinks
// keep their write paths cheap.
package audit

import "time"

// EventType categorizes an audit event.
type EventType string

const (
	EventTypeAnalyticsQuery EventType = "analytics.query"
	EventTypeAccessDenied   EventType = "authz.access_denied"
	EventTypeManageList     EventType = "manage.list"
	EventTypeManageUpdate   EventType = "manage.update"
	EventTypeManageDelete   EventType = "manage.delete"
)

// EventStatus represents the outcome of an event.
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
	EventStatusDenied  EventStatus = "denied"
)

// Event is a single audit log entry. It carries the acting username, never
// the credential that authenticated it.
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`
	Username  string      `json:"username,omitempty"`
	Operation string      `json:"operation,omitempty"`
	Entity    string      `json:"entity,omitempty"`
	Message   string      `json:"message,omitempty"`
}
