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

// Package server implements the Gatehouse HTTP facade: a fixed-window
// admission gate in front of an ordered path-pattern router.
//
// # Architecture
//
// Every non-system request flows through a single pipeline:
//
//   - Admission: a per-client fixed-window rate limiter decides first.
//     Denied requests get the configured status with a plain-text body
//     and nothing else.
//   - Identity: admitted requests are assigned a request ID, echoed in
//     the X-Request-Id header.
//   - Headers: the configured security headers are stamped on every
//     admitted response.
//   - Body: the request body is buffered and, when the declared content
//     type is JSON and the payload is a JSON object, decoded into the
//     dispatch context. Anything else yields an empty body map; malformed
//     JSON is never an error.
//   - Dispatch: patterns are matched in registration order, first match
//     wins. Unmatched paths get a bare 404 with no body.
//
// A handler panic is fatal: the client gets a best-effort 500, the
// server drains, and Run returns the panic as an error.
//
// # Usage
//
// Basic server startup:
//
//	s := server.New(
//	    server.WithName("gatehoused"),
//	    server.WithPort(8080),
//	    server.WithRateLimit(time.Minute, 100),
//	)
//
//	s.Route("GET", "/v1/widgets/:id", func(c *server.Context) *server.Response {
//	    return server.JSON(http.StatusOK, map[string]any{"id": c.Param("id")})
//	})
//
//	if err := s.Run(ctx); err != nil {
//	    slog.Error("server failed", "error", err)
//	    os.Exit(1)
//	}
//
// # Routing
//
// Patterns are slash-separated. A segment starting with a colon captures
// the corresponding path segment:
//
//	s.Route("GET", "/v1/users/:id/posts/:post", handler)
//
// Patterns match in the order they were registered; registering the same
// pattern again replaces its handler without changing its position.
// Literal segments compare raw and case-sensitive, captured values are
// percent-decoded.
//
// # System Endpoints
//
// GET /health, GET /ready, and GET /metrics are mounted outside the
// pipeline: they are never rate limited and carry no pipeline headers.
// /ready flips to 503 as soon as shutdown begins.
//
// # Observability
//
// Admitted responses advertise the window state:
//
//	X-RateLimit-Limit: requests allowed per window
//	X-RateLimit-Remaining: requests remaining in the current window
//	X-RateLimit-Reset: Unix timestamp when the window resets
//
// Prometheus metrics are exposed on /metrics, including request totals,
// latency histograms, in-flight gauge, and admission rejections.
//
// # Error Handling
//
// Structured errors return a consistent JSON body:
//
//	{
//	  "code": "INTERNAL",
//	  "message": "An unexpected error occurred",
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2026-08-23T12:00:00Z",
//	  "retryable": false
//	}
//
// Admission denials and unmatched routes deliberately do not use this
// body: denials are plain text and 404s are empty.
//
// # References
//
//   - UUID generation: https://pkg.go.dev/github.com/google/uuid
//   - Log sampling: https://pkg.go.dev/golang.org/x/time/rate
//   - Prometheus client: https://pkg.go.dev/github.com/prometheus/client_golang
//   - Kubernetes probes: https://kubernetes.io/docs/tasks/configure-pod-container/configure-liveness-readiness-startup-probes/
package server
