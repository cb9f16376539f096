package common

import (
	"net/http"
)

// ErrorResponse is the JSON shape of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CustomError carries an error code and the HTTP status it maps to.
type CustomError struct {
	Code    string
	Message string
	Err     error
	Status  int
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewError creates a new CustomError.
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError marks a per-request validation failure.
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError creates a new validation error.
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// Predefined error codes.
const (
	// Client errors (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeUnauthorized     = "UNAUTHORIZED"       // 401
	ErrCodeForbidden        = "FORBIDDEN"          // 403
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405
	ErrCodeRequestTimeout   = "REQUEST_TIMEOUT"    // 408
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429

	// Server errors (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504
)

// Predefined errors.
var (
	ErrInvalidRequest   = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)
	ErrNotFound         = NewError(ErrCodeNotFound, "resource not found", http.StatusNotFound, nil)
	ErrMethodNotAllowed = NewError(ErrCodeMethodNotAllowed, "method not allowed", http.StatusMethodNotAllowed, nil)
	ErrRequestTimeout   = NewError(ErrCodeRequestTimeout, "request timeout", http.StatusRequestTimeout, nil)
	ErrTooManyRequests  = NewError(ErrCodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)

	ErrInternalError      = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "service temporarily unavailable", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "gateway timeout", http.StatusGatewayTimeout, nil)

	// Domain errors
	ErrRecipeNotFound   = NewError("RECIPE_NOT_FOUND", "recipe not found", http.StatusNotFound, nil)
	ErrCacheFull        = NewError("CACHE_FULL", "cache is full", http.StatusServiceUnavailable, nil)
	ErrCacheDisabled    = NewError("CACHE_DISABLED", "cache is disabled", http.StatusServiceUnavailable, nil)
	ErrSourceDisabled   = NewError("SOURCE_DISABLED", "catalog source is not configured", http.StatusServiceUnavailable, nil)
	ErrStoreUnavailable = NewError("STORE_UNAVAILABLE", "pantry store is not available", http.StatusServiceUnavailable, nil)
	ErrAIServiceError   = NewError("AI_SERVICE_ERROR", "AI service error", http.StatusServiceUnavailable, nil)
)
