// Package api provides the HTTP API layer for the Gatehouse service.
//
// This package acts as a thin wrapper around the reusable pkg/server
// package, configuring it with application-specific routes and handlers.
// It owns the process lifecycle: configuration loading, signal handling,
// systemd readiness notification, and version stamping all live here, so
// the command in cmd/gatehoused stays a one-liner.
//
// # Usage
//
// To start the server:
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//	    "github.com/gatehouse-io/gatehouse/pkg/api"
//	)
//
//	func main() {
//	    if err := api.Serve(context.Background(), ""); err != nil {
//	        log.Fatalf("server error: %v", err)
//	    }
//	}
//
// # Architecture
//
// The API layer is responsible for:
//   - Configuring structured logging with application name and version
//   - Loading configuration from file and environment
//   - Setting up route handlers (e.g., /v1/status)
//   - Reporting readiness and shutdown to systemd
//   - Delegating server lifecycle management to pkg/server
//
// The pkg/server package handles:
//   - HTTP server setup and graceful shutdown
//   - Admission control (per-client rate limiting)
//   - Middleware (request IDs, security headers, logging, panic handling)
//   - Health and readiness endpoints
//   - Prometheus metrics
//
// # Endpoints
//
// Application Endpoints (subject to admission control):
//   - GET  /           - Service identity (name, version)
//   - GET  /v1/status  - Runtime status including admission counters;
//     requires a bearer token when auth.require_token is set
//   - POST /v1/echo    - Echo of the parsed request (method, params, query, body)
//   - POST /v1/tokens  - Exchange credentials for a bearer token; registered
//     only when both a secret and a password hash are configured
//
// System Endpoints (no admission control):
//   - GET /health  - Health check (liveness probe)
//   - GET /ready   - Readiness check
//   - GET /metrics - Prometheus metrics
//
// # Token Issuing (POST /v1/tokens)
//
// The /v1/tokens endpoint accepts a JSON body with the caller's identity
// and password:
//
//	{
//	  "subject": "deploy-bot",
//	  "password": "..."
//	}
//
// The password is checked against the configured bcrypt hash. On success
// the response carries a signed token and its expiry:
//
//	curl -X POST http://localhost:8080/v1/tokens \
//	  -H "Content-Type: application/json" \
//	  -d '{"subject":"deploy-bot","password":"..."}'
//
// # Configuration
//
// Configuration is loaded from an optional YAML or JSON file, with
// environment variables taking precedence:
//   - PORT: HTTP server port (default: 8080)
//   - ADDRESS: Bind address (default: all interfaces)
//   - RATE_LIMIT_WINDOW_SECONDS: Admission window length
//   - RATE_LIMIT_MAX_REQUESTS: Requests allowed per window per client
//   - GATEHOUSE_AUTH_SECRET: Token signing secret
//   - SHUTDOWN_TIMEOUT_SECONDS: Graceful shutdown deadline
//   - LOG_LEVEL: Logging level (debug, info, warn, error)
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/gatehouse-io/gatehouse/pkg/api.version=1.0.0'"
package api
