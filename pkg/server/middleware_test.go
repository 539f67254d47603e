// Copyright (c) 2026, Gatehouse Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

// newGateTest returns a server with a tight admission limit and one
// registered GET /v1/ping route.
func newGateTest(t *testing.T, max int) *Server {
	t.Helper()

	s := New(
		WithPort(8080),
		WithRateLimit(time.Minute, max),
	)
	if err := s.Route("GET", "/v1/ping", okHandler); err != nil {
		t.Fatalf("route failed: %v", err)
	}
	return s
}

func doPipeline(s *Server, method, target, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	s.pipeline()(w, req)
	return w
}

func TestAdmissionDenial(t *testing.T) {
	s := newGateTest(t, 1)

	w1 := doPipeline(s, http.MethodGet, "/v1/ping", "10.1.1.1:5000")
	if w1.Code != http.StatusOK {
		t.Fatalf("expected first request admitted, got %d", w1.Code)
	}

	w2 := doPipeline(s, http.MethodGet, "/v1/ping", "10.1.1.1:5000")

	if w2.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", w2.Code)
	}
	if ct := w2.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("expected Content-Type text/plain, got %q", ct)
	}
	if body := w2.Body.String(); body != "Too many requests, please try again later" {
		t.Errorf("unexpected denial body: %q", body)
	}

	// Denials carry no pipeline headers.
	for _, h := range []string{
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
		"X-RateLimit-Reset",
		"X-Request-Id",
		HeaderContentTypeOptions,
		HeaderFrameOptions,
	} {
		if v := w2.Header().Get(h); v != "" {
			t.Errorf("expected denial without %s, got %q", h, v)
		}
	}
}

func TestAdmissionDenialConfigured(t *testing.T) {
	s := New(
		WithPort(8080),
		WithRateLimit(time.Minute, 1),
		WithRejection(http.StatusServiceUnavailable, "gate closed"),
	)

	doPipeline(s, http.MethodGet, "/v1/ping", "10.1.1.2:5000")
	w := doPipeline(s, http.MethodGet, "/v1/ping", "10.1.1.2:5000")

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected configured status 503, got %d", w.Code)
	}
	if body := w.Body.String(); body != "gate closed" {
		t.Errorf("expected configured message, got %q", body)
	}
}

func TestAdmissionHeaders(t *testing.T) {
	s := newGateTest(t, 3)

	before := time.Now().Unix()
	w := doPipeline(s, http.MethodGet, "/v1/ping", "10.1.1.3:5000")

	if got := w.Header().Get("X-RateLimit-Limit"); got != "3" {
		t.Errorf("expected limit 3, got %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "2" {
		t.Errorf("expected remaining 2, got %q", got)
	}

	reset, err := strconv.ParseInt(w.Header().Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		t.Fatalf("reset header not an integer: %v", err)
	}
	if reset < before || reset > before+61 {
		t.Errorf("reset %d not within the window from %d", reset, before)
	}

	// Remaining counts down per admitted request.
	w2 := doPipeline(s, http.MethodGet, "/v1/ping", "10.1.1.3:5000")
	if got := w2.Header().Get("X-RateLimit-Remaining"); got != "1" {
		t.Errorf("expected remaining 1, got %q", got)
	}
}

func TestAdmissionKeyedByClient(t *testing.T) {
	s := newGateTest(t, 1)

	w1 := doPipeline(s, http.MethodGet, "/v1/ping", "10.2.0.1:5000")
	w2 := doPipeline(s, http.MethodGet, "/v1/ping", "10.2.0.2:5000")

	if w1.Code != http.StatusOK || w2.Code != http.StatusOK {
		t.Errorf("expected distinct clients admitted independently, got %d and %d", w1.Code, w2.Code)
	}

	// Same client again is over the limit.
	w3 := doPipeline(s, http.MethodGet, "/v1/ping", "10.2.0.1:6000")
	if w3.Code != http.StatusTooManyRequests {
		t.Errorf("expected same host denied regardless of source port, got %d", w3.Code)
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		expected   string
	}{
		{
			name:       "host and port",
			remoteAddr: "192.0.2.1:31337",
			expected:   "192.0.2.1",
		},
		{
			name:       "ipv6 host and port",
			remoteAddr: "[2001:db8::1]:443",
			expected:   "2001:db8::1",
		},
		{
			name:       "no port falls back to raw",
			remoteAddr: "unix-socket-peer",
			expected:   "unix-socket-peer",
		},
		{
			name:       "missing address shares the unknown bucket",
			remoteAddr: "",
			expected:   "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if got := clientKey(req); got != tt.expected {
				t.Errorf("expected key %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	s := New()

	final := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	t.Run("generates request ID when not provided", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
		w := httptest.NewRecorder()

		s.requestIDMiddleware(final)(w, req)

		if w.Header().Get("X-Request-Id") == "" {
			t.Error("expected X-Request-Id header to be set")
		}
	})

	t.Run("uses provided request ID", func(t *testing.T) {
		expectedID := "550e8400-e29b-41d4-a716-446655440000"
		req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
		req.Header.Set("X-Request-Id", expectedID)
		w := httptest.NewRecorder()

		s.requestIDMiddleware(final)(w, req)

		if got := w.Header().Get("X-Request-Id"); got != expectedID {
			t.Errorf("expected request ID %s, got %s", expectedID, got)
		}
	})

	t.Run("regenerates invalid UUID", func(t *testing.T) {
		invalidID := "not-a-valid-uuid"
		req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
		req.Header.Set("X-Request-Id", invalidID)
		w := httptest.NewRecorder()

		s.requestIDMiddleware(final)(w, req)

		if got := w.Header().Get("X-Request-Id"); got == invalidID {
			t.Error("expected invalid UUID to be regenerated")
		}
	})

	t.Run("propagates ID through context", func(t *testing.T) {
		var seen string
		req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
		w := httptest.NewRecorder()

		s.requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		})(w, req)

		if seen == "" || seen != w.Header().Get("X-Request-Id") {
			t.Errorf("expected context ID to match header, got %q and %q", seen, w.Header().Get("X-Request-Id"))
		}
	})
}

func TestSecurityHeadersOffByDefault(t *testing.T) {
	s := newGateTest(t, 10)

	w := doPipeline(s, http.MethodGet, "/v1/ping", "10.3.0.1:5000")

	for _, name := range []string{
		HeaderContentTypeOptions,
		HeaderFrameOptions,
		HeaderXSSProtection,
		HeaderStrictTransport,
		HeaderContentSecurityPolicy,
	} {
		if got := w.Header().Get(name); got != "" {
			t.Errorf("expected %s omitted without configuration, got %q", name, got)
		}
	}
}

func TestSecurityHeadersEnabled(t *testing.T) {
	on := HeaderValue{set: true}
	sec := SecurityConfig{
		ContentTypeOptions: on,
		FrameOptions:       on,
		XSSProtection:      on,
		StrictTransport:    on,
	}

	s := New(
		WithPort(8080),
		WithSecurity(sec),
	)
	if err := s.Route("GET", "/v1/ping", okHandler); err != nil {
		t.Fatalf("route failed: %v", err)
	}

	w := doPipeline(s, http.MethodGet, "/v1/ping", "10.3.0.1:5000")

	expected := map[string]string{
		HeaderContentTypeOptions: "nosniff",
		HeaderFrameOptions:       "DENY",
		HeaderXSSProtection:      "1; mode=block",
		HeaderStrictTransport:    "max-age=15552000; includeSubDomains",
	}

	for name, value := range expected {
		if got := w.Header().Get(name); got != value {
			t.Errorf("expected %s=%q, got %q", name, value, got)
		}
	}
}

func TestSecurityHeadersConfigured(t *testing.T) {
	sec := SecurityConfig{
		FrameOptions:          HeaderValue{set: true, override: "SAMEORIGIN"},
		StrictTransport:       HeaderValue{set: true, disabled: true},
		ContentSecurityPolicy: HeaderValue{set: true, override: "default-src 'self'"},
	}

	s := New(
		WithPort(8080),
		WithSecurity(sec),
	)
	if err := s.Route("GET", "/v1/ping", okHandler); err != nil {
		t.Fatalf("route failed: %v", err)
	}

	w := doPipeline(s, http.MethodGet, "/v1/ping", "10.3.0.2:5000")

	if got := w.Header().Get(HeaderFrameOptions); got != "SAMEORIGIN" {
		t.Errorf("expected overridden frame options, got %q", got)
	}
	if got := w.Header().Get(HeaderStrictTransport); got != "" {
		t.Errorf("expected disabled header to be absent, got %q", got)
	}
	if got := w.Header().Get(HeaderContentSecurityPolicy); got != "default-src 'self'" {
		t.Errorf("expected configured CSP, got %q", got)
	}
	if got := w.Header().Get(HeaderContentTypeOptions); got != "" {
		t.Errorf("expected unconfigured header to be omitted, got %q", got)
	}
}

func TestHideIdentity(t *testing.T) {
	s := New(
		WithPort(8080),
		WithSecurity(SecurityConfig{HideIdentity: true}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	w.Header().Set("Server", "upstream/1.0")
	w.Header().Set("X-Powered-By", "upstream")

	s.securityHeadersMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})(w, req)

	for _, name := range identityHeaders {
		if got := w.Header().Get(name); got != "" {
			t.Errorf("expected %s to be stripped, got %q", name, got)
		}
	}
}

func TestPanicGuard(t *testing.T) {
	s := New()

	panicky := func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/boom", nil)
	w := httptest.NewRecorder()

	// Must not propagate the panic; must write a best-effort 500.
	s.panicGuardMiddleware(panicky)(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d after panic, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestPanicGuardPreservesWrittenResponse(t *testing.T) {
	s := New()

	partial := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("after write")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/boom", nil)
	rw := newResponseWriter(httptest.NewRecorder())

	s.panicGuardMiddleware(partial)(rw, req)

	if rw.Status() != http.StatusAccepted {
		t.Errorf("expected already-written status to stand, got %d", rw.Status())
	}
}
