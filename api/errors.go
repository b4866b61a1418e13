package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// User-facing fallback messages
const (
	NetworkErrorMessage        = "Network error. Please check your connection."
	UnauthorizedMessage        = "You are not authorized to perform this action."
	GenericErrorMessage        = "Something went wrong. Please try again."
	LoginFailedMessage         = "Login failed. Please check your credentials."
	RegistrationFailedMessage  = "Registration failed. Please try again."
	LoadListsFailedMessage     = "Failed to load task lists. Please try again."
	LoadAccountFailedMessage   = "Failed to load account details"
	DeleteAccountFailedMessage = "Failed to delete account. Please try again."
)

// ErrorMessage is the backend "message" field, which is either one string or
// a list of strings (one per failed validation rule).
type ErrorMessage struct {
	values   []string
	multiple bool
}

// SingleMessage builds a one-string ErrorMessage
func SingleMessage(msg string) ErrorMessage {
	return ErrorMessage{values: []string{msg}}
}

// MultipleMessages builds a list ErrorMessage
func MultipleMessages(msgs ...string) ErrorMessage {
	return ErrorMessage{values: msgs, multiple: true}
}

// UnmarshalJSON accepts a string or an array of strings
func (m *ErrorMessage) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*m = SingleMessage(single)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*m = MultipleMessages(many...)
		return nil
	}
	return errors.New("api: message must be a string or an array of strings")
}

// IsMultiple reports whether the backend sent a list
func (m ErrorMessage) IsMultiple() bool {
	return m.multiple
}

// Values returns the individual messages
func (m ErrorMessage) Values() []string {
	return m.values
}

// String joins the messages for display
func (m ErrorMessage) String() string {
	return strings.Join(m.values, ", ")
}

// APIError is a non-2xx backend response. Message is normalized once, when the
// response is decoded.
type APIError struct {
	Status  int
	Message string
	Raw     ErrorMessage
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api: http %d: %s", e.Status, e.Message)
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: GenericErrorMessage}
	data, _ := io.ReadAll(resp.Body)
	if len(data) == 0 {
		return apiErr
	}
	var payload struct {
		Message ErrorMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return apiErr
	}
	apiErr.Raw = payload.Message
	if text := strings.TrimSpace(payload.Message.String()); text != "" {
		apiErr.Message = text
	}
	return apiErr
}

// NetworkError means the request never produced an HTTP response
type NetworkError struct {
	Method string
	Path   string
	Cause  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("api: %s %s: %v", e.Method, e.Path, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// DisplayMessage maps an error from this package to text for the user.
// fallback is used when err carries nothing displayable.
func DisplayMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message == GenericErrorMessage && fallback != "" {
			return fallback
		}
		return apiErr.Message
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return NetworkErrorMessage
	}
	var formErr *FormError
	if errors.As(err, &formErr) {
		return formErr.Error()
	}
	if fallback != "" {
		return fallback
	}
	return GenericErrorMessage
}
