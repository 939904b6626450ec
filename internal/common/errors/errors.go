// Package errors provides standardized error handling for the screening workflow.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrCodeSessionNotFound        ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeInvalidPhaseTransition ErrorCode = "INVALID_PHASE_TRANSITION"

	ErrCodeGenerationFormatInvalid ErrorCode = "GENERATION_FORMAT_INVALID"
	ErrCodeGenerationUnavailable   ErrorCode = "GENERATION_UNAVAILABLE"
	ErrCodeGenerationTimeout       ErrorCode = "GENERATION_TIMEOUT"

	ErrCodeRoleProfileNotFound     ErrorCode = "ROLE_PROFILE_NOT_FOUND"
	ErrCodePersistenceAppendFailed ErrorCode = "PERSISTENCE_APPEND_FAILED"
	ErrCodeSessionStoreFailed      ErrorCode = "SESSION_STORE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable validation error. It
// blocks only the transition whose input was rejected.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable lookup error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPhaseTransitionError creates a non-retryable transition error.
func NewInvalidPhaseTransitionError(phase, action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPhaseTransition,
		Message:   "Action not allowed in current phase",
		Details:   fmt.Sprintf("phase: %s, action: %s", phase, action),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFormatError creates a non-retryable format error: the
// backend answered, but the structured payload could not be extracted.
func NewGenerationFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFormatInvalid,
		Message:   "Generation backend returned unparsable content",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationUnavailableError creates a retryable backend error.
func NewGenerationUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationUnavailable,
		Message:   "Generation backend call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationTimeoutError creates a retryable timeout error.
func NewGenerationTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "Generation backend timeout",
		Details:   "call exceeded configured deadline",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRoleProfileNotFoundError creates a non-retryable lookup error. Only
// surfaced when intake gating requires a role profile.
func NewRoleProfileNotFoundError(role string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRoleProfileNotFound,
		Message:   "No requirement profile for role",
		Details:   fmt.Sprintf("role: %s", role),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceAppendFailedError creates a retryable storage error.
func NewPersistenceAppendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceAppendFailed,
		Message:   "Failed to append interview record",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable session store error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// CodeOf extracts the error code from any error in the chain, or empty.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeGenerationUnavailable,
		ErrCodePersistenceAppendFailed,
		ErrCodeSessionStoreFailed:
		return 3

	case ErrCodeGenerationTimeout:
		return 1

	default:
		return 0 // Business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "GENERATION"):
		return "GENERATION"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "PERSISTENCE"):
		return "STORAGE"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
