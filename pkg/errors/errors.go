// Package errors provides structured error types for infcat.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the resolver, the catalog step and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The resolver distinguishes four failure classes:
//   - INVALID_FORMAT: the descriptor cannot be opened or is malformed (fatal)
//   - NOT_FOUND: an expected section or line is absent (fatal only for the
//     Manufacturer section, ordinary control flow everywhere else)
//   - OUT_OF_RANGE: a field index exceeds the line's field count
//   - PLATFORM_ERROR: an enumeration or lookup primitive failed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "section %q not found", name)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // skip this branch
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Descriptor errors
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeOutOfRange    Code = "OUT_OF_RANGE"
	ErrCodePlatform      Code = "PLATFORM_ERROR"

	// Aggregation errors
	ErrCodeCapacity Code = "CAPACITY_EXCEEDED"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Catalog errors
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeCatalogFailed Code = "CATALOG_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
// The outermost *Error decides; a NOT_FOUND wrapped in INVALID_FORMAT
// reports INVALID_FORMAT.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}
