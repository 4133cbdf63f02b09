package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("permission denied")

	// When: wrapping with LogError
	logErr := New(ErrCodeLogDirUnavailable, "cannot create /var/log/app", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, logErr)
	assert.Equal(t, originalErr, errors.Unwrap(logErr))
	assert.True(t, errors.Is(logErr, originalErr))
}

func TestLogError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "log dir",
			code:     ErrCodeLogDirUnavailable,
			message:  "cannot create logs",
			expected: "[ERR_102_LOG_DIR_UNAVAILABLE] cannot create logs",
		},
		{
			name:     "drain timeout",
			code:     ErrCodeDrainTimeout,
			message:  "drain did not finish",
			expected: "[ERR_502_DRAIN_TIMEOUT] drain did not finish",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestLogError_Is_MatchesSentinelByCode(t *testing.T) {
	// Given: a drain timeout wrapped by fmt.Errorf
	err := fmt.Errorf("shutdown: %w", New(ErrCodeDrainTimeout, "waited 5s", nil))

	// Then: it matches the sentinel but not other codes
	assert.True(t, errors.Is(err, ErrDrainTimeout))
	assert.False(t, errors.Is(err, ErrFacilityDrained))
}

func TestLogError_WithDetails_AddsContext(t *testing.T) {
	err := New(ErrCodeSinkWrite, "write failed", nil).
		WithDetail("sink", "combined").
		WithSuggestion("Check free disk space")

	assert.Equal(t, "combined", err.Details["sink"])
	assert.Equal(t, "Check free disk space", err.Suggestion)
}

func TestLogError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeLogDirUnavailable, CategoryConfig},
		{ErrCodeInvalidLevel, CategoryConfig},
		{ErrCodeSinkWrite, CategoryIO},
		{ErrCodeDeleteFailed, CategoryIO},
		{ErrCodeInvalidRetention, CategoryValidation},
		{ErrCodeInvalidArgument, CategoryValidation},
		{ErrCodeDrainTimeout, CategoryLifecycle},
		{ErrCodeFacilityDrained, CategoryLifecycle},
		{ErrCodeInternal, CategoryInternal},
		{"BAD", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestLogError_SeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantSeverity Severity
	}{
		{ErrCodeLogDirUnavailable, SeverityFatal},
		{ErrCodeSinkWrite, SeverityWarning},
		{ErrCodeDeleteFailed, SeverityWarning},
		{ErrCodeDrainTimeout, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestConstructors_UseCategoryCodes(t *testing.T) {
	assert.Equal(t, ErrCodeConfigInvalid, ConfigError("c", nil).Code)
	assert.Equal(t, ErrCodeSinkWrite, IOError("i", nil).Code)
	assert.Equal(t, ErrCodeInvalidArgument, ValidationError("v", nil).Code)
	assert.Equal(t, ErrCodeInternal, InternalError("x", nil).Code)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestWrap_CreatesLogErrorFromError(t *testing.T) {
	originalErr := errors.New("something went wrong")

	logErr := Wrap(ErrCodeInternal, originalErr)

	require.NotNil(t, logErr)
	assert.Equal(t, ErrCodeInternal, logErr.Code)
	assert.Equal(t, "something went wrong", logErr.Message)
	assert.Equal(t, originalErr, logErr.Cause)
}

func TestHelpers_WorkThroughWrapping(t *testing.T) {
	err := fmt.Errorf("startup: %w", New(ErrCodeLogDirUnavailable, "no dir", nil))

	assert.True(t, IsFatal(err))
	assert.Equal(t, ErrCodeLogDirUnavailable, GetCode(err))
	assert.Equal(t, CategoryConfig, GetCategory(err))

	plain := errors.New("plain")
	assert.False(t, IsFatal(plain))
	assert.Empty(t, GetCode(plain))
	assert.Empty(t, GetCategory(plain))
}
