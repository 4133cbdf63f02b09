// Package errors provides structured error handling for amanlog.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors (log directory, levels)
//   - 2XX: IO errors (sink writes, handle close, file deletion)
//   - 4XX: Validation errors
//   - 5XX: Lifecycle and internal errors (drain)
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryLifecycle indicates facility lifecycle errors.
	CategoryLifecycle Category = "LIFECYCLE"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid     = "ERR_101_CONFIG_INVALID"
	ErrCodeLogDirUnavailable = "ERR_102_LOG_DIR_UNAVAILABLE"
	ErrCodeInvalidLevel      = "ERR_103_INVALID_LEVEL"

	// IO errors (200-299)
	ErrCodeSinkWrite    = "ERR_201_SINK_WRITE"
	ErrCodeSinkClose    = "ERR_202_SINK_CLOSE"
	ErrCodeDeleteFailed = "ERR_203_DELETE_FAILED"

	// Validation errors (400-499)
	ErrCodeInvalidRetention = "ERR_401_INVALID_RETENTION"
	ErrCodeInvalidArgument  = "ERR_402_INVALID_ARGUMENT"

	// Lifecycle errors (500-599)
	ErrCodeInternal        = "ERR_501_INTERNAL"
	ErrCodeDrainTimeout    = "ERR_502_DRAIN_TIMEOUT"
	ErrCodeFacilityDrained = "ERR_503_FACILITY_DRAINED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "102" from "ERR_102_LOG_DIR_UNAVAILABLE")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	case '5':
		if code == ErrCodeInternal {
			return CategoryInternal
		}
		return CategoryLifecycle
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeLogDirUnavailable:
		return SeverityFatal
	case ErrCodeSinkWrite, ErrCodeDeleteFailed:
		// Swallowed by the facility; only surfaced through health counters.
		return SeverityWarning
	default:
		return SeverityError
	}
}
