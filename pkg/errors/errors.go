// Package errors provides structured error types for bookdash.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code] so the CLI, the web dashboard and the terminal UI can react to the
// same condition in the same way:
//
//   - DATA_UNAVAILABLE: the source could not be read; fatal to a render
//   - ROW_PARSE_SKIPPED: a single row was dropped during cleaning; never fatal
//   - INVALID_*: bad view names, formats, configuration
//   - INTERNAL_ERROR: everything else
//
// # Usage
//
//	err := errors.Wrap(errors.ErrCodeDataUnavailable, cause, "open %s", path)
//	if errors.Is(err, errors.ErrCodeDataUnavailable) {
//	    // fail the page, no retry
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Source errors
	ErrCodeDataUnavailable Code = "DATA_UNAVAILABLE"
	ErrCodeRowParseSkipped Code = "ROW_PARSE_SKIPPED"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidView   Code = "INVALID_VIEW"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Lifecycle errors
	ErrCodeClosed Code = "CLOSED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Fatal reports whether an error with code c aborts the operation that
// produced it. Skipped rows are recorded and the load continues.
func (c Code) Fatal() bool {
	return c != ErrCodeRowParseSkipped
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code     // Machine-readable error code
	Message string   // Human-readable message
	Cause   error    // Underlying error (optional)
	Details []string // Individual problems of a validation error
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
// Only the outermost *Error in the chain is consulted, so a wrapper can
// re-classify an inner failure.
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

// DataUnavailable wraps cause as a DATA_UNAVAILABLE error for source.
func DataUnavailable(source string, cause error) *Error {
	return Wrap(ErrCodeDataUnavailable, cause, "data source %s unavailable", source)
}

// RowSkipped reports that the row with 1-based index row was dropped because
// value could not be parsed.
func RowSkipped(row int, column, value string, cause error) *Error {
	return Wrap(ErrCodeRowParseSkipped, cause, "row %d: %s %q", row, strings.ToLower(column), value)
}

// Validation collects problems into one error of the given code. It returns
// nil when there are no problems.
//
//	errors.Validation(errors.ErrCodeInvalidConfig, "configuration", problems)
//	// INVALID_CONFIG: configuration validation failed:
//	// - source.path is required
func Validation(code Code, subject string, problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &Error{
		Code:    code,
		Message: subject + " validation failed:\n- " + strings.Join(problems, "\n- "),
		Details: append([]string(nil), problems...),
	}
}

// Details returns the individual problems of a validation error, or nil.
func Details(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// IsDataUnavailable reports whether err is a DATA_UNAVAILABLE error.
func IsDataUnavailable(err error) bool {
	return Is(err, ErrCodeDataUnavailable)
}
