package mockapi

import (
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable rejection reason sent as "reason"
type ErrorCode string

const (
	ErrMissingToken         ErrorCode = "MISSING_TOKEN"
	ErrMalformed            ErrorCode = "MALFORMED"
	ErrExpired              ErrorCode = "EXPIRED"
	ErrInvalidSignature     ErrorCode = "INVALID_SIGNATURE"
	ErrUnsupportedAlgorithm ErrorCode = "UNSUPPORTED_ALGORITHM"
	ErrNoneAlgorithm        ErrorCode = "NONE_ALGORITHM"
	ErrUnknownUser          ErrorCode = "UNKNOWN_USER"
	ErrConfigError          ErrorCode = "CONFIG_ERROR"
)

// AuthError is a token or credential rejection.
type AuthError struct {
	Code     ErrorCode
	Message  string
	Internal error
}

func (e *AuthError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Internal
}

func newAuthError(code ErrorCode, message string, internal error) *AuthError {
	return &AuthError{Code: code, Message: message, Internal: internal}
}

func codeOf(err error) ErrorCode {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return "UNKNOWN"
}

var (
	errUsernameTaken = errors.New("Username already exists")
	errEmailTaken    = errors.New("Email already exists")
	errUserNotFound  = errors.New("User not found")
	errBadPassword   = errors.New("Invalid credentials")
	errListNotFound  = errors.New("Task list not found")
	errNotMember     = errors.New("You do not have access to this task list")
)
