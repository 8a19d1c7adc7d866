package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	ErrorTypeNetwork        ErrorType = "network_failure"
	ErrorTypeUnsuccessful   ErrorType = "unsuccessful_response"
	ErrorTypeEmptyBody      ErrorType = "empty_body"
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeInternal       ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewNetworkError is returned when the remote could not be reached at all
// (DNS, connect, TLS, timeout, cancelled context).
func NewNetworkError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetwork,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Internal:   internal,
	}
}

// NewUnsuccessfulResponseError wraps a non-2xx reply. serverMessage may be empty.
func NewUnsuccessfulResponseError(statusCode int, serverMessage string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnsuccessful,
		Message:    serverMessage,
		StatusCode: statusCode,
	}
}

// NewEmptyBodyError is returned for a 2xx reply without a usable payload
func NewEmptyBodyError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeEmptyBody,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Internal:   internal,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// As extracts an *AppError from err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

// UserMessage returns the best-effort human readable description of err.
// The server supplied message wins; otherwise a generic text per type.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	appErr, ok := As(err)
	if !ok {
		return err.Error()
	}
	if appErr.Message != "" {
		return appErr.Message
	}

	switch appErr.Type {
	case ErrorTypeNetwork:
		return "Unable to reach the server"
	case ErrorTypeUnsuccessful:
		if text := http.StatusText(appErr.StatusCode); text != "" {
			return fmt.Sprintf("Request failed: %d %s", appErr.StatusCode, text)
		}
		return fmt.Sprintf("Request failed: %d", appErr.StatusCode)
	case ErrorTypeEmptyBody:
		return "Empty response from server"
	case ErrorTypeAuthentication:
		return "Not signed in"
	default:
		return "Something went wrong"
	}
}

// ErrorResponse represents the JSON error response written by the bridge
type ErrorResponse struct {
	Success bool `json:"success"`
	Error   struct {
		Type      ErrorType              `json:"type"`
		Message   string                 `json:"message"`
		Details   map[string]interface{} `json:"details,omitempty"`
		RequestID string                 `json:"request_id,omitempty"`
		Timestamp string                 `json:"timestamp"`
	} `json:"error"`
}
