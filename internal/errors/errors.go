package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Spec errors (SPEC-001 to SPEC-099)
	ErrCodeSpecNotFound     ErrorCode = "SPEC-001"
	ErrCodeSpecMalformed    ErrorCode = "SPEC-002"
	ErrCodeSpecUnmarshal    ErrorCode = "SPEC-003"
	ErrCodeConfidenceRange  ErrorCode = "SPEC-004"
	ErrCodeSpecLockMismatch ErrorCode = "SPEC-005"

	// Plan errors (PLAN-001 to PLAN-099)
	ErrCodeTaskSizeViolation  ErrorCode = "PLAN-001"
	ErrCodeCycleDetected      ErrorCode = "PLAN-002"
	ErrCodeInvalidDependency  ErrorCode = "PLAN-003"
	ErrCodeResourceConflict   ErrorCode = "PLAN-004"
	ErrCodePlanInvalid        ErrorCode = "PLAN-005"
	ErrCodeTestFirstViolation ErrorCode = "PLAN-006"

	// Lifecycle errors (LIFECYCLE-001 to LIFECYCLE-099)
	ErrCodeInvalidTransition ErrorCode = "LIFECYCLE-001"
	ErrCodeUnknownTask       ErrorCode = "LIFECYCLE-002"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// Coded is implemented by every error that carries an ErrorCode.
type Coded interface {
	error
	Code() ErrorCode
	Suggestions() []string
}

// Error represents an enhanced error with code, suggestions, and documentation
type Error struct {
	ErrCode ErrorCode
	Message string
	Hints   []string
	DocsURL string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.ErrCode, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	return b.String()
}

// Code returns the error code
func (e *Error) Code() ErrorCode {
	return e.ErrCode
}

// Suggestions returns remediation hints
func (e *Error) Suggestions() []string {
	return e.Hints
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{
		ErrCode: code,
		Message: message,
	}
}

// Wrap creates a new Error wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		ErrCode: code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *Error) WithSuggestions(suggestions ...string) *Error {
	e.Hints = append(e.Hints, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *Error) WithDocs(url string) *Error {
	e.DocsURL = url
	return e
}

// Describe renders a coded error with its suggestions for terminal output.
func Describe(err Coded) string {
	var b strings.Builder
	b.WriteString(err.Error())

	if hints := err.Suggestions(); len(hints) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, s := range hints {
			b.WriteString(fmt.Sprintf("\n  • %s", s))
		}
	}

	if e, ok := err.(*Error); ok && e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Common error constructors for frequently used errors

// NewSpecNotFoundError creates a spec file not found error
func NewSpecNotFoundError(path string) *Error {
	return New(ErrCodeSpecNotFound, fmt.Sprintf("specification file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Pass the document with --in <file>")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *Error {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}

// NewFileWriteError creates a write failure error
func NewFileWriteError(path string, cause error) *Error {
	return Wrap(ErrCodeFileWriteFailed, fmt.Sprintf("failed to write file: %s", path), cause).
		WithSuggestion("Verify the directory exists and is writable")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *Error {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Review the config file passed with --config").
		WithSuggestion("Check SPECPLAN_* environment variables")
}

// NewPlanStaleError reports that a saved plan no longer matches its spec.
func NewPlanStaleError(expected, actual string) *Error {
	return New(ErrCodeSpecLockMismatch, "plan was built from a different specification").
		WithSuggestion("Regenerate the plan with 'specplan plan'").
		WithSuggestion(fmt.Sprintf("Expected digest: %s, got: %s", expected, actual))
}
