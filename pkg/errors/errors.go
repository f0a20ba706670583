// Package errors provides structured error types for diagrammer.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly notices for rejected form input
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_* / EMPTY_* / MISSING_*: Form input rejected before the store is touched
//   - NOT_FOUND: Selection refers to an entity that no longer exists
//   - CONFIRMATION_*: Destructive operation gated on user confirmation
//   - STORAGE_* / QUOTA_*: Persistence failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSelfLoop, "source and target must be different nodes")
//	if errors.Is(err, errors.ErrCodeSelfLoop) {
//	    // Show a notice, leave the diagram untouched
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save diagram")
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
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeEmptyLabel       Code = "EMPTY_LABEL"
	ErrCodeMissingEndpoint  Code = "MISSING_ENDPOINT"
	ErrCodeSelfLoop         Code = "SELF_LOOP"
	ErrCodeInvalidEdgeType  Code = "INVALID_EDGE_TYPE"
	ErrCodeNoSelection      Code = "NO_SELECTION"
	ErrCodeInvalidChange    Code = "INVALID_CHANGE"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidNamespace Code = "INVALID_NAMESPACE"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Confirmation gate
	ErrCodeConfirmationRequired Code = "CONFIRMATION_REQUIRED"
	ErrCodeCancelled            Code = "CANCELLED"

	// Persistence errors
	ErrCodeStorage       Code = "STORAGE_ERROR"
	ErrCodeQuotaExceeded Code = "QUOTA_EXCEEDED"
	ErrCodeCorruptData   Code = "CORRUPT_DATA"

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
		return e.Message
	}
	return err.Error()
}

// IsValidation reports whether err is a rejected-input error. Such errors are
// shown to the user as a notice and never reach the store.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeEmptyLabel, ErrCodeMissingEndpoint, ErrCodeSelfLoop,
		ErrCodeInvalidEdgeType, ErrCodeNoSelection, ErrCodeInvalidChange,
		ErrCodeInvalidFormat, ErrCodeInvalidNamespace:
		return true
	}
	return false
}
