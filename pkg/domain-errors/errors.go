// Package domainerrors defines the code-carrying error type used across the
// service. Services attach a machine-distinguishable Code so the transport
// layer can map failures to HTTP statuses without string matching, and so
// callers can decide whether a retry makes sense (only CodeUnavailable is
// transient).
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies an error for programmatic handling.
type Code string

const (
	// CodeInvalidInput marks malformed values rejected at a trust boundary
	// (bad UUID, unknown role). CodeBadRequest marks structurally valid but
	// semantically unacceptable requests (empty content, missing addressing).
	// Both map to 400; the distinction keeps parse-time and rule-time
	// failures separable in logs.
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	// CodeUnavailable marks transient persistence failures. The operation
	// left no partial state behind and may be retried with backoff.
	CodeUnavailable Code = "unavailable"
	CodeInternal    Code = "internal"
)

// Error is the domain error type. Wrapped causes stay reachable through
// errors.Unwrap for logging, but handlers should only ever branch on Code.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// New builds a domain error with a code and a human-readable message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a domain error that preserves the underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call-site readability in handlers.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// non-domain errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its transport status. Unknown codes map to 500
// so a missed case fails loudly in monitoring rather than leaking a 200.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
