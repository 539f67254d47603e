package server

import "net/http"

// responseWriter wraps http.ResponseWriter to capture the status code and
// whether anything was written. Only the first WriteHeader takes effect.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	bytes      int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader captures the status code; repeated calls are ignored.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.written {
		return
	}
	rw.written = true
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write marks the response as written and counts body bytes.
func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.written = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Status returns the captured status code.
func (rw *responseWriter) Status() int {
	return rw.statusCode
}

// Written reports whether headers or body were sent.
func (rw *responseWriter) Written() bool {
	return rw.written
}
