// Package apperr defines the error taxonomy shared by the HTTP handlers.
// Every failure crossing the handler boundary is one of these kinds; the
// boundary maps the kind to an HTTP status exactly once.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// Internal is a store failure or unexpected condition (500).
	Internal Kind = iota
	// Validation is missing or malformed required input (400).
	Validation
	// NotFound means a referenced id does not exist (404).
	NotFound
	// InvalidTransition is a status change not permitted by the
	// transition table (400).
	InvalidTransition
	// Conflict is an operation blocked by current state (400).
	Conflict
)

// Error is an application error with a kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode maps the error kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case Validation, InvalidTransition, Conflict:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Validationf creates a validation error.
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf creates a not-found error.
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionf creates an invalid-transition error.
func InvalidTransitionf(format string, args ...interface{}) *Error {
	return &Error{Kind: InvalidTransition, Message: fmt.Sprintf(format, args...)}
}

// Conflictf creates a conflict error.
func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

// Internalf wraps an underlying failure as an internal error.
func Internalf(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: Internal, Message: fmt.Sprintf(format, args...), Err: err}
}

// From extracts an *Error from err, wrapping unknown errors as Internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: Internal, Message: "internal server error", Err: err}
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
