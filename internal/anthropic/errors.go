package anthropic

import "fmt"

// Anthropic error taxonomy.
const (
	ErrTypeInvalidRequest = "invalid_request_error"
	ErrTypeAuthentication = "authentication_error"
	ErrTypePermission     = "permission_error"
	ErrTypeNotFound       = "not_found_error"
	ErrTypeRateLimit      = "rate_limit_error"
	ErrTypeAPI            = "api_error"
)

// APIError is an upstream or gateway failure carrying the HTTP status to
// report to the client and the Anthropic error type derived from it.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

// NewAPIError derives the error type from the status code.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Type:       ErrorTypeForStatus(statusCode),
		Message:    message,
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream status %d (%s): %s", e.StatusCode, e.Type, e.Message)
}

// ErrorTypeForStatus maps an HTTP status code to the Anthropic error type.
func ErrorTypeForStatus(status int) string {
	switch status {
	case 400:
		return ErrTypeInvalidRequest
	case 401:
		return ErrTypeAuthentication
	case 403:
		return ErrTypePermission
	case 404:
		return ErrTypeNotFound
	case 429:
		return ErrTypeRateLimit
	default:
		return ErrTypeAPI
	}
}

// ErrorResponse is the gateway's JSON error body.
type ErrorResponse struct {
	Error  ErrorDetail `json:"error"`
	Status int         `json:"status"`
}

// ErrorDetail carries the error type and human-readable message.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewErrorResponse builds the wire body for an error of the given type.
func NewErrorResponse(status int, errType, message string) ErrorResponse {
	return ErrorResponse{
		Error:  ErrorDetail{Type: errType, Message: message},
		Status: status,
	}
}
