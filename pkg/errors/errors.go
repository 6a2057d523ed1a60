// Package errors provides structured error types for archviews.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - LOAD_FAILURE, LAYOUT_FAILED, EXPORT_FAILED: pipeline stage failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Pipeline stages
//
// A solution that cannot be opened fails with [ErrCodeLoadFailure] before any
// model exists. Two elements of one view that share a node key fail with
// [ErrCodeDuplicateAlias]. Layout engine failures surface as
// [ErrCodeLayoutFailed]. Unresolved references are warnings, not errors; the
// [ErrCodeUnresolvedReference] code tags them when they are reported through
// an error channel such as a strict run.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown provider: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeLoadFailure, origErr, "open %s", path)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle    Code = "INVALID_STYLE"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidName     Code = "INVALID_NAME"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeElementNotFound Code = "ELEMENT_NOT_FOUND"
	ErrCodeViewNotFound    Code = "VIEW_NOT_FOUND"

	// Pipeline errors
	ErrCodeLoadFailure         Code = "LOAD_FAILURE"
	ErrCodeUnresolvedReference Code = "UNRESOLVED_REFERENCE"
	ErrCodeDuplicateAlias      Code = "DUPLICATE_ALIAS"
	ErrCodeLayoutFailed        Code = "LAYOUT_FAILED"
	ErrCodeExportFailed        Code = "EXPORT_FAILED"

	// Infrastructure errors
	ErrCodeTimeout      Code = "TIMEOUT"
	ErrCodeCacheBackend Code = "CACHE_BACKEND"

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
// It unwraps the error chain looking for the first coded error.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Typed errors such as [UnresolvedError] report their code through a Code
// method. Returns empty string if the chain carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

type coder interface{ Code() Code }

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

// UnresolvedError collects references dropped while resolving a model. It is
// returned only when a caller asks for strict resolution.
type UnresolvedError struct {
	Warnings []string
}

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	switch len(e.Warnings) {
	case 0:
		return "unresolved references"
	case 1:
		return "unresolved reference: " + e.Warnings[0]
	default:
		return fmt.Sprintf("%d unresolved references, first: %s", len(e.Warnings), e.Warnings[0])
	}
}

// Code returns the error code for this error type.
func (e *UnresolvedError) Code() Code {
	return ErrCodeUnresolvedReference
}
