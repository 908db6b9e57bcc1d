// Package apperror provides the structured error and warning values returned
// by the network operations. Fatal conditions are returned as *Error with
// SeverityError; advisory conditions are collected as Warnings and never stop
// an operation.
package apperror

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Fatal
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeUnsupportedType   ErrorCode = "UNSUPPORTED_TYPE"
	CodeAttributeNotFound ErrorCode = "ATTRIBUTE_NOT_FOUND"
	CodeUnknownMode       ErrorCode = "UNKNOWN_MODE"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"

	// Advisory
	CodeEmptyEndpointsDropped ErrorCode = "EMPTY_ENDPOINTS_DROPPED"
	CodeFromNarrowed          ErrorCode = "FROM_NARROWED"
	CodeDuplicateTargets      ErrorCode = "DUPLICATE_TARGETS"
	CodeMultipleMatches       ErrorCode = "MULTIPLE_MATCHES"
	CodePointNotBlended       ErrorCode = "POINT_NOT_BLENDED"
	CodeDirectednessMismatch  ErrorCode = "DIRECTEDNESS_MISMATCH"
	CodeNameConflict          ErrorCode = "NAME_CONFLICT"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityWarning marks an advisory condition; the operation completed.
	SeverityWarning Severity = iota
	// SeverityError marks a fatal condition; the operation was aborted.
	SeverityError
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Error is a coded error with an optional field, structured details and an
// underlying cause.
type Error struct {
	Code     ErrorCode      // Code is a unique identifier for the type of error.
	Message  string         // Message is a human-readable description of the error.
	Field    string         // Field names the input that caused the error, if any.
	Details  map[string]any // Details provides additional structured information.
	Cause    error          // Cause is the underlying error, if any.
	Severity Severity
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a fatal error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithField creates a fatal error bound to an input field.
func NewWithField(code ErrorCode, message, field string) *Error {
	e := New(code, message)
	e.Field = field
	return e
}

// NewWarning creates an advisory error.
func NewWarning(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityWarning,
	}
}

// Wrap creates a fatal error that wraps cause.
func Wrap(cause error, code ErrorCode, message string) *Error {
	e := New(code, message)
	e.Cause = cause
	return e
}

// WithDetails adds a key-value pair to the error's details and returns it.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error and returns it.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Is reports whether err is an *Error carrying code.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from err, or CodeInternal if err is not an *Error.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
