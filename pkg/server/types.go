package server

import (
	"time"
)

// HandlerFunc handles one dispatched request and returns the response to
// write. A nil return writes 204 No Content.
type HandlerFunc func(*Context) *Response

// Response is what a handler returns. A nil Body writes the status line
// only, with no Content-Type.
type Response struct {
	Status      int
	ContentType string            // optional; JSON when unset and Body is present
	Headers     map[string]string // extra response headers
	Body        any
}

// JSON returns a response whose body is serialized as JSON.
func JSON(status int, body any) *Response {
	return &Response{Status: status, Body: body}
}

// Text returns a plain-text response.
func Text(status int, text string) *Response {
	return &Response{Status: status, ContentType: "text/plain", Body: text}
}

// NoContent returns a bodiless response with the given status.
func NoContent(status int) *Response {
	return &Response{Status: status}
}

// ErrorResponse is the JSON body written for request failures.
type ErrorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId"`
	Timestamp time.Time      `json:"timestamp"`
	Retryable bool           `json:"retryable"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}
