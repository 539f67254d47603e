package server

import (
	"net/http"
	"time"

	"github.com/gatehouse-io/gatehouse/pkg/errors"
	"github.com/gatehouse-io/gatehouse/pkg/serializer"
	"github.com/google/uuid"
)

// HTTPStatusFromCode maps structured error codes to HTTP status codes.
func HTTPStatusFromCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case errors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case errors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes a structured error response
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, code errors.ErrorCode, message string, retryable bool, details map[string]any) {
	requestID := GetRequestID(r.Context())
	if requestID == "" {
		// Error paths that never passed admission still need a
		// correlatable ID.
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// Error returns a handler response carrying the structured error body.
func Error(c *Context, code errors.ErrorCode, message string) *Response {
	return JSON(HTTPStatusFromCode(code), ErrorResponse{
		Code:      string(code),
		Message:   message,
		RequestID: c.RequestID,
		Timestamp: time.Now().UTC(),
	})
}
