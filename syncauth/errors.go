package syncauth

import (
	"errors"
	"fmt"
)

// ErrorCode represents a session error code
type ErrorCode string

const (
	ErrMissingToken    ErrorCode = "MISSING_TOKEN"
	ErrMalformed       ErrorCode = "MALFORMED"
	ErrInvalidEncoding ErrorCode = "INVALID_ENCODING"
	ErrInvalidPayload  ErrorCode = "INVALID_PAYLOAD"
	ErrExpired         ErrorCode = "EXPIRED"
	ErrStoreFailure    ErrorCode = "STORE_FAILURE"
	ErrConfigError     ErrorCode = "CONFIG_ERROR"
)

// ValidationError represents a token or session failure with a code and message
type ValidationError struct {
	Code     ErrorCode
	Message  string
	Internal error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *ValidationError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(code ErrorCode, message string, internal error) *ValidationError {
	return &ValidationError{
		Code:     code,
		Message:  message,
		Internal: internal,
	}
}

// CodeOf returns the ErrorCode carried by err, or "UNKNOWN".
func CodeOf(err error) ErrorCode {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Code
	}
	return "UNKNOWN"
}
