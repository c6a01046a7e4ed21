package api

import "fmt"

// ErrorType represents the category of an API error.
type ErrorType string

const (
	ErrorTypeServerError     ErrorType = "server_error"
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeUnauthorized    ErrorType = "unauthorized"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeTooManyRequests ErrorType = "too_many_requests"
)

// APIError is the structured error returned by every HTTP endpoint.
type APIError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code,omitempty"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse wraps an APIError as the top-level JSON error body.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewInvalidRequestError creates an APIError for invalid request parameters.
func NewInvalidRequestError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// NewUnauthorizedError creates an APIError for missing or rejected credentials.
func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
	}
}

// NewNotFoundError creates an APIError for unknown resources.
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewServerError creates an APIError for internal server errors.
func NewServerError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeServerError,
		Message: message,
	}
}

// NewTooManyRequestsError creates an APIError for rate limiting.
func NewTooManyRequestsError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeTooManyRequests,
		Message: message,
	}
}
