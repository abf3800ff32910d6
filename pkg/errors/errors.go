// Package errors provides structured error types for TimeNexus.
//
// Every failure surfaced to a user carries a machine-readable [Code], a
// short title, a human-readable message and a [Severity]. The codes mirror
// the stages of the multilayer pipeline:
//   - BUILDER: malformed model construction calls
//   - FORMAT: a layered collection or flattened graph fails validation
//   - CONVERTER: raw tabular input cannot be turned into a model
//   - WRITER: an endpoint cannot be resolved while flattening
//   - APP_CALL: the external extraction service failed
//   - EXTRACTION: orchestrator-level failures, including cancellation
//
// # Usage
//
//	err := errors.New(errors.ErrCodeFormat, "Unknown flattened network",
//	    "Current network was not recognized as flattened network.")
//	if errors.Is(err, errors.ErrCodeFormat) {
//	    // report to the user
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeAppCall, origErr, "Anat Server not found", "request failed")
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the different pipeline stages.
const (
	ErrCodeBuilder    Code = "BUILDER"
	ErrCodeFormat     Code = "FORMAT"
	ErrCodeConverter  Code = "CONVERTER"
	ErrCodeWriter     Code = "WRITER"
	ErrCodeAppCall    Code = "APP_CALL"
	ErrCodeExtraction Code = "EXTRACTION"

	// Generic errors used by the CLI, the API and the stores.
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
)

// Severity tells the presenter how loudly to report an error.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Error is a structured error with a code, a title and an optional cause.
type Error struct {
	Code     Code     // Machine-readable error code
	Title    string   // Short title shown above the message
	Message  string   // Human-readable message
	Severity Severity // Defaults to SeverityError
	Cause    error    // Underlying error (optional)
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

// WithSeverity returns a copy of e with the given severity.
func (e *Error) WithSeverity(s Severity) *Error {
	c := *e
	c.Severity = s
	return &c
}

// New creates a new Error with the given code, title and formatted message.
func New(code Code, title, format string, args ...any) *Error {
	return &Error{
		Code:     code,
		Title:    title,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, title, format string, args ...any) *Error {
	return &Error{
		Code:     code,
		Title:    title,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
		Cause:    cause,
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

// TitleOf returns the title of the first *Error in the chain, or "Error".
func TitleOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Title != "" {
		return e.Title
	}
	return "Error"
}

// SeverityOf returns the severity of the first *Error in the chain.
// Errors outside this package are reported as SeverityError.
func SeverityOf(err error) Severity {
	var e *Error
	if errors.As(err, &e) && e.Severity != "" {
		return e.Severity
	}
	return SeverityError
}

// ErrCancelled is returned by every cancellation checkpoint of an extraction.
// Callers should treat it as "stop", not as a failure.
var ErrCancelled = &Error{
	Code:     ErrCodeExtraction,
	Title:    "Extraction cancelled",
	Message:  "The extraction was cancelled",
	Severity: SeverityError,
}

// IsCancelled reports whether err is a cancellation, either ErrCancelled or
// a cancelled context.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// CheckContext returns ErrCancelled when ctx is done.
func CheckContext(ctx context.Context) error {
	if ctx.Err() != nil {
		return ErrCancelled
	}
	return nil
}
