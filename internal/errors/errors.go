// Package errors defines the API error taxonomy shared by all handlers.
package errors

import "net/http"

// APIError represents a structured API error with an HTTP status, a stable
// machine-readable code and a human-readable message.
type APIError struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Predefined errors
var (
	ErrBadRequest        = &APIError{HTTPStatus: http.StatusBadRequest, Code: "BAD_REQUEST", Message: "Invalid request parameters"}
	ErrInvalidJSON       = &APIError{HTTPStatus: http.StatusBadRequest, Code: "INVALID_JSON", Message: "Invalid JSON format"}
	ErrInternalServer    = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "INTERNAL_SERVER_ERROR", Message: "Internal server error"}
	ErrDatabase          = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "DATABASE_ERROR", Message: "Database operation failed"}
	ErrResourceNotFound  = &APIError{HTTPStatus: http.StatusNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrMissingCredential = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "MISSING_CREDENTIAL", Message: "Upstream API key is not configured"}
	ErrUpstreamTimeout   = &APIError{HTTPStatus: http.StatusGatewayTimeout, Code: "UPSTREAM_TIMEOUT", Message: "Upstream request timed out"}
	ErrBadGateway        = &APIError{HTTPStatus: http.StatusGatewayTimeout, Code: "UPSTREAM_UNREACHABLE", Message: "No response from upstream"}
)

// NewAPIError creates a new APIError based on a predefined error with a custom message.
func NewAPIError(base *APIError, message string) *APIError {
	return &APIError{
		HTTPStatus: base.HTTPStatus,
		Code:       base.Code,
		Message:    message,
	}
}

// NewAPIErrorWithUpstream creates an APIError carrying an upstream status code.
func NewAPIErrorWithUpstream(statusCode int, code, message string) *APIError {
	return &APIError{
		HTTPStatus: statusCode,
		Code:       code,
		Message:    message,
	}
}
