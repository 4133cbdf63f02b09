package errors

import (
	"errors"
	"fmt"
)

// LogError is the structured error type for amanlog.
// It provides rich context for error handling, diagnostics, and user presentation.
type LogError struct {
	// Code is the unique error code (e.g., "ERR_502_DRAIN_TIMEOUT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *LogError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *LogError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() against the sentinel values below.
func (e *LogError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*LogError); ok && t != nil {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *LogError) WithDetail(key, value string) *LogError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *LogError) WithSuggestion(suggestion string) *LogError {
	e.Suggestion = suggestion
	return e
}

// New creates a new LogError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *LogError {
	return &LogError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a LogError from an existing error.
// The error's message becomes the LogError message.
func Wrap(code string, err error) *LogError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Sentinels for errors.Is comparisons. Matching is by code only.
var (
	ErrDrainTimeout      = New(ErrCodeDrainTimeout, "log drain timed out", nil)
	ErrFacilityDrained   = New(ErrCodeFacilityDrained, "log facility already drained", nil)
	ErrInvalidRetention  = New(ErrCodeInvalidRetention, "retention days must be positive", nil)
	ErrInvalidLevel      = New(ErrCodeInvalidLevel, "invalid log level", nil)
	ErrLogDirUnavailable = New(ErrCodeLogDirUnavailable, "log directory unavailable", nil)
)

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *LogError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates a sink write error.
func IOError(message string, cause error) *LogError {
	return New(ErrCodeSinkWrite, message, cause)
}

// ValidationError creates an invalid-argument error.
func ValidationError(message string, cause error) *LogError {
	return New(ErrCodeInvalidArgument, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *LogError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort startup.
func IsFatal(err error) bool {
	var le *LogError
	if errors.As(err, &le) {
		return le.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a LogError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var le *LogError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

// GetCategory extracts the category from a LogError.
// Returns empty string if not a LogError.
func GetCategory(err error) Category {
	var le *LogError
	if errors.As(err, &le) {
		return le.Category
	}
	return ""
}
