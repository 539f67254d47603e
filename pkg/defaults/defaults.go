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

package defaults

import "time"

// Server timeouts for HTTP listener configuration.
const (
	// ServerReadTimeout is the maximum duration for reading an entire request.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown,
	// covering listener drain plus all registered cleanup actions.
	ServerShutdownTimeout = 30 * time.Second
)

// Admission defaults for the fixed-window rate limiter.
const (
	// RateLimitWindow is the default fixed-window duration.
	RateLimitWindow = 60 * time.Second

	// RateLimitMax is the default number of requests admitted per key per window.
	RateLimitMax = 100

	// RateLimitSweepFactor scales the window into the eviction sweep period.
	// A sweep every 2x the window bounds limiter memory to keys active within
	// roughly one window.
	RateLimitSweepFactor = 2

	// RateLimitRejectStatus is the status code written on admission denial.
	RateLimitRejectStatus = 429

	// RateLimitRejectMessage is the plain-text body written on admission denial.
	RateLimitRejectMessage = "Too many requests, please try again later"
)

// Auth defaults for token minting and password hashing.
const (
	// TokenTTL is the default lifetime of a minted access token.
	TokenTTL = 1 * time.Hour

	// PasswordHashCost is the default bcrypt work factor.
	PasswordHashCost = 10
)

// Security header values applied to admitted responses unless overridden.
const (
	// SecurityContentTypeOptions is the default X-Content-Type-Options value.
	SecurityContentTypeOptions = "nosniff"

	// SecurityFrameOptions is the default X-Frame-Options value.
	SecurityFrameOptions = "DENY"

	// SecurityXSSProtection is the default X-XSS-Protection value.
	SecurityXSSProtection = "1; mode=block"

	// SecurityHSTS is the default Strict-Transport-Security value (180 days).
	SecurityHSTS = "max-age=15552000; includeSubDomains"
)

// Outbound HTTP client defaults, used by the serializer's HttpReader and the
// CLI commands that query a running server.
const (
	// HTTPClientTimeout is the total request timeout.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the TCP connect timeout.
	HTTPConnectTimeout = 10 * time.Second

	// HTTPKeepAlive is the keep-alive probe interval for established connections.
	HTTPKeepAlive = 30 * time.Second

	// HTTPTLSHandshakeTimeout bounds the TLS handshake.
	HTTPTLSHandshakeTimeout = 10 * time.Second

	// HTTPResponseHeaderTimeout bounds the wait for response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is how long idle pooled connections are kept.
	HTTPIdleConnTimeout = 90 * time.Second
)
