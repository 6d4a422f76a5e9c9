// Package errors provides sentinel errors and user-facing error types for scaffold.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for known conditions.
var (
	// ErrConfiguration indicates a setup mistake: duplicate priority names,
	// missing storage arguments, non-object input to defaults/merge.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidValue indicates a value that cannot be persisted as JSON.
	ErrInvalidValue = errors.New("invalid value")

	// ErrResolution indicates a generator reference could not be resolved or instantiated.
	ErrResolution = errors.New("resolution error")

	// ErrTask indicates a queued task failed.
	ErrTask = errors.New("task failed")

	// ErrValidation indicates invalid user input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a generator, key, or file was not found.
	ErrNotFound = errors.New("not found")
)

// Exit codes.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates invalid input or configuration.
	ExitValidationError = 2

	// ExitNotFound indicates an unknown generator or missing file.
	ExitNotFound = 5

	// ExitTaskFailed indicates a generator task failed during the run.
	ExitTaskFailed = 7
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Err  error
	Code int

	// Printed is set when the command layer already reported the error.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrInvalidValue):
		return ExitValidationError
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrResolution):
		return ExitNotFound
	case errors.Is(err, ErrTask):
		return ExitTaskFailed
	default:
		return ExitGeneralError
	}
}

// DetailError captures structured error information for terminal output.
type DetailError struct {
	// Type is the error category (required).
	Type string

	// Message is the specific description (required).
	Message string

	// Location is the file path or namespace involved (optional).
	Location string

	// Field is the key or option name involved (optional).
	Field string

	// Context contains additional key-value context (optional).
	Context map[string]string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString("Error: ")
	b.WriteString(e.Type)
	b.WriteString("\n")

	if e.Location != "" {
		b.WriteString("  Location: ")
		b.WriteString(e.Location)
		b.WriteString("\n")
	}
	if e.Field != "" {
		b.WriteString("  Field: ")
		b.WriteString(e.Field)
		b.WriteString("\n")
	}
	for k, v := range e.Context {
		b.WriteString("  ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error with details.
func NewValidationError(message, location, field, hint string) error {
	return &DetailError{
		Type:     "validation failed",
		Message:  message,
		Location: location,
		Field:    field,
		Hint:     hint,
		Cause:    ErrValidation,
	}
}

// NewNotFoundError creates a not found error with details.
func NewNotFoundError(message, location, hint string) error {
	return &DetailError{
		Type:     "not found",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrNotFound,
	}
}

// NewConfigurationError creates a configuration error with details.
func NewConfigurationError(message, field, hint string) error {
	return &DetailError{
		Type:    "configuration error",
		Message: message,
		Field:   field,
		Hint:    hint,
		Cause:   ErrConfiguration,
	}
}

// Wrap wraps an error with a sentinel error type.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}

// Wrapf formats a message and wraps it with a sentinel error type.
func Wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
