// Package errors provides structured error types for dotsink.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_*, ALREADY_*: Lifecycle misuse of a sink
//   - PROCESS_*, BROKEN_PIPE, RENDER_FAILED: Renderer subprocess failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotAcquired, "write: sink not acquired")
//	if errors.Is(err, errors.ErrCodeNotAcquired) {
//	    // Handle misuse
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeProcessLaunch, origErr, "start %s", name)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Sink lifecycle errors
	ErrCodeNotAcquired     Code = "NOT_ACQUIRED"
	ErrCodeAlreadyAcquired Code = "ALREADY_ACQUIRED"
	ErrCodeNotReleased     Code = "NOT_RELEASED"

	// Renderer process errors
	ErrCodeProcessLaunch Code = "PROCESS_LAUNCH"
	ErrCodeBrokenPipe    Code = "BROKEN_PIPE"
	ErrCodeSideFile      Code = "SIDE_FILE"
	ErrCodeRenderFailed  Code = "RENDER_FAILED"

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
// It unwraps the error chain looking for an *Error with a matching code,
// including errors combined with [errors.Join].
func Is(err error, code Code) bool {
	switch e := err.(type) {
	case nil:
		return false
	case *Error:
		if e.Code == code {
			return true
		}
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if Is(inner, code) {
				return true
			}
		}
		return false
	}
	return Is(errors.Unwrap(err), code)
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

// ExitError reports a renderer that ran to completion with a non-zero status.
type ExitError struct {
	Command  string // Renderer executable
	ExitCode int    // Process exit status
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
}

// Code returns the error code for this error type.
func (e *ExitError) Code() Code {
	return ErrCodeRenderFailed
}
