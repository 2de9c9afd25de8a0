// Package errors provides standardized domain errors with codes for the PackZen client engine.
//
// Usage:
//
//	// In the rules engine - return typed errors
//	if item.IsContainer {
//	    return errors.InvalidPlacement("containers cannot be nested")
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrInvalidPlacement) {
//	    // surface without starting the mutation
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the engine.
const (
	// CodeInvalidPlacement marks a violation of the bag/container placement rules.
	CodeInvalidPlacement Code = "INVALID_PLACEMENT"
	// CodeValidation marks bad user input caught before any state change.
	CodeValidation Code = "VALIDATION"
	// CodeRemote marks a failed gateway call; the mutation rolls back.
	CodeRemote Code = "REMOTE"
	// CodeNotFound marks a reference to an item absent from the store.
	CodeNotFound Code = "NOT_FOUND"
	// CodeFeed marks a malformed or unrecognized change-feed event.
	CodeFeed Code = "FEED"
	// CodeInternal marks an engine bug.
	CodeInternal Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	StatusCode int    `json:"status_code,omitempty"` // remote HTTP status, when known
	cause      error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, StatusCode: e.StatusCode, cause: e.cause}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, StatusCode: e.StatusCode, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrInvalidPlacement = &Error{Code: CodeInvalidPlacement, Message: "invalid placement"}
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation error"}
	ErrRemote           = &Error{Code: CodeRemote, Message: "remote request failed"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrFeed             = &Error{Code: CodeFeed, Message: "bad feed event"}
	ErrInternal         = &Error{Code: CodeInternal, Message: "internal error"}
)

// InvalidPlacement creates a placement-rule violation error.
func InvalidPlacement(msg string) *Error {
	return &Error{Code: CodeInvalidPlacement, Message: msg}
}

// InvalidPlacementf creates a placement-rule violation error with formatted message.
func InvalidPlacementf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidPlacement, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Remote creates a remote-failure error.
func Remote(msg string) *Error {
	return &Error{Code: CodeRemote, Message: msg}
}

// Remotef creates a remote-failure error with formatted message.
func Remotef(format string, args ...any) *Error {
	return &Error{Code: CodeRemote, Message: fmt.Sprintf(format, args...)}
}

// RemoteStatus creates a remote-failure error carrying the HTTP status code.
func RemoteStatus(msg string, status int) *Error {
	return &Error{Code: CodeRemote, Message: msg, StatusCode: status}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Feed creates a feed-application error.
func Feed(msg string) *Error {
	return &Error{Code: CodeFeed, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
