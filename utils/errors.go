package utils

import (
	"context"
	"net/http"
)

type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

var (
	ErrInvalidIdempotencyKey = NewAPIError(http.StatusBadRequest, "Invalid idempotency key format")
	ErrTooManyRequests       = NewAPIError(http.StatusTooManyRequests, "Too many requests")
	ErrCircuitOpen           = NewAPIError(http.StatusServiceUnavailable, "Circuit breaker is open")
)

func LogError(ctx context.Context, err error, message string, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}

	fields["error"] = err.Error()
	Error(ctx, message, fields)
}
