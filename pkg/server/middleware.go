package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gatehouse-io/gatehouse/pkg/errors"
	"github.com/google/uuid"
)

// pipeline applies the standard middleware chain to the dispatcher.
// Admission runs first so denied requests never reach the stages that
// assign IDs or stamp headers.
func (s *Server) pipeline() http.HandlerFunc {
	return s.metricsMiddleware(
		s.admissionMiddleware(
			s.requestIDMiddleware(
				s.securityHeadersMiddleware(
					s.panicGuardMiddleware(
						s.loggingMiddleware(s.dispatch),
					),
				),
			),
		),
	)
}

// admissionMiddleware enforces the fixed-window limit before any other
// processing. Denied responses carry the configured status, a plain-text
// body, and nothing else; admitted responses advertise the window state
// through X-RateLimit headers.
func (s *Server) admissionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)

		d := s.limiter.Allow(key)
		if !d.Allowed {
			rateLimitRejects.Inc()
			s.rejectLog.Do(func() {
				slog.Warn("request denied admission",
					"key", key,
					"method", r.Method,
					"path", r.URL.Path,
					"reset", d.ResetUnix())
			})

			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(s.config.RateLimit.RejectStatus)
			if _, err := io.WriteString(w, s.config.RateLimit.RejectMessage); err != nil {
				slog.Warn("failed to write rejection", "error", err)
			}
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetUnix(), 10))

		next(w, r)
	}
}

// clientKey derives the admission key from the peer address. Requests with
// no usable peer address share a single "unknown" bucket.
func clientKey(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requestIDMiddleware adds request ID to context
func (s *Server) requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" || uuid.Validate(requestID) != nil {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-Id", requestID)

		next(w, r.WithContext(ctx))
	}
}

// securityHeadersMiddleware stamps the configured security headers on every
// admitted response and, when hide_identity is on, strips headers that name
// the serving stack.
func (s *Server) securityHeadersMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, pair := range s.securityHeaders {
			h.Set(pair.name, pair.value)
		}
		if s.hideIdentity {
			for _, name := range identityHeaders {
				h.Del(name)
			}
		}
		next(w, r)
	}
}

// panicGuardMiddleware turns a handler panic into a best-effort 500 and a
// fatal server stop. A process that panicked mid-request cannot be trusted
// to keep serving.
func (s *Server) panicGuardMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				handlerPanics.Inc()
				slog.Error("handler panic",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"requestId", GetRequestID(r.Context()),
					"stack", string(debug.Stack()))

				if rw, ok := w.(*responseWriter); !ok || !rw.Written() {
					WriteError(w, r, http.StatusInternalServerError, errors.ErrCodeInternal,
						"An unexpected error occurred", false, nil)
				}

				s.stop(fmt.Errorf("handler panic on %s %s: %v", r.Method, r.URL.Path, rec))
			}
		}()

		next(w, r)
	}
}

// loggingMiddleware logs request details
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remoteAddr", r.RemoteAddr,
			"requestId", GetRequestID(r.Context()))

		next(w, r)

		slog.Debug("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"durationMs", time.Since(start).Milliseconds(),
			"requestId", GetRequestID(r.Context()))
	}
}
