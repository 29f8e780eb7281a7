// Package apierr defines the error taxonomy shared by the authorization
// gate and the analytics layer. Every failure carries a machine-checkable
// Kind and a human-readable message; internal details (wrapped store
// errors, query text) never leak into the message itself.
package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers and serving layers.
type Kind string

const (
	// KindUnauthorized covers missing, invalid or expired tokens and
	// unresolvable identities (maps to 401).
	KindUnauthorized Kind = "unauthorized"
	// KindForbidden covers resolved but inactive or non-admin identities
	// (maps to 403).
	KindForbidden Kind = "forbidden"
	// KindBadRequest covers out-of-range or missing parameters (maps to 400).
	KindBadRequest Kind = "bad_request"
	// KindUnknownMetric covers metric names outside the catalog (maps to 400).
	KindUnknownMetric Kind = "unknown_metric"
	// KindNotFound is reserved for serving layers; the core reports an
	// unmatched entity as a value, not an error.
	KindNotFound Kind = "not_found"
	// KindStore covers collaborator failures. Always terminal, never retried.
	KindStore Kind = "store_error"
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Unauthorized creates a KindUnauthorized error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Unauthorizedf creates a KindUnauthorized error wrapping a cause.
func Unauthorizedf(message string, err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: message, Err: err}
}

// Forbidden creates a KindForbidden error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// BadRequest creates a KindBadRequest error.
func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// UnknownMetric creates a KindUnknownMetric error for an unrecognized name.
func UnknownMetric(name string, allowed []string) *Error {
	return &Error{
		Kind:    KindUnknownMetric,
		Message: fmt.Sprintf("invalid metric %q, allowed: %v", name, allowed),
	}
}

// Store wraps a collaborator failure.
func Store(err error) *Error {
	return &Error{Kind: KindStore, Message: "store query failed", Err: err}
}

// KindOf extracts the kind from an error. The second return is false when
// the error is not a classified *Error (callers should treat that as an
// internal failure).
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a classified error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
