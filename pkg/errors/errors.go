// Package errors provides structured error types for cellsolve.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The layout core distinguishes four failure classes:
//   - INVALID_GRAMMAR: a relation string could not be parsed (fatal at solve time)
//   - INFEASIBLE: the constraint set admits no solution (recoverable)
//   - MISSING_BACKEND: no solver backend is configured (fatal)
//   - UNRESOLVED: an operation needed a resolved box that does not exist
//
// Outer surfaces (CLI, API, pipeline) add INVALID_INPUT, INVALID_FORMAT,
// NOT_FOUND and TIMEOUT.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidGrammar, "no operator in %q", rel)
//	if errors.Is(err, errors.ErrCodeInvalidGrammar) {
//	    // Report the offending relation
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInfeasible, cause, "freeze %s", c.Key())
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidGrammar    Code = "INVALID_GRAMMAR"
	ErrCodeInvalidConstraint Code = "INVALID_CONSTRAINT"
	ErrCodeInvalidState      Code = "INVALID_STATE"

	// Solve outcomes
	ErrCodeInfeasible Code = "INFEASIBLE"
	ErrCodeUnresolved Code = "UNRESOLVED"
	ErrCodeTimeout    Code = "TIMEOUT"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Configuration errors
	ErrCodeMissingBackend Code = "MISSING_BACKEND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// The outermost *Error wins; inner codes are not consulted.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Has reports whether any *Error in the chain carries code.
// Unlike Is it keeps unwrapping past outer coded errors.
func Has(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
