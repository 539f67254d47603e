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
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gatehouse-io/gatehouse/pkg/defaults"
	"github.com/gatehouse-io/gatehouse/pkg/errors"
	"github.com/gatehouse-io/gatehouse/pkg/serializer"
	"gopkg.in/yaml.v3"
)

// Config holds server configuration
type Config struct {
	// Server identity
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"-" json:"-"`

	// Server configuration
	Address string `yaml:"address" json:"address"`
	Port    int    `yaml:"port" json:"port"`

	// Admission control configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Response header configuration
	Security SecurityConfig `yaml:"security_headers" json:"security_headers"`

	// Token auth configuration
	Auth AuthConfig `yaml:"auth" json:"auth"`

	// Lifecycle callbacks, not part of the config file
	OnReady    func() `yaml:"-" json:"-"`
	OnStopping func() `yaml:"-" json:"-"`

	// Timeouts are tuned through the environment, not the config file
	ReadTimeout       time.Duration `yaml:"-" json:"-"`
	ReadHeaderTimeout time.Duration `yaml:"-" json:"-"`
	WriteTimeout      time.Duration `yaml:"-" json:"-"`
	IdleTimeout       time.Duration `yaml:"-" json:"-"`
	ShutdownTimeout   time.Duration `yaml:"-" json:"-"`
}

// RateLimitConfig tunes the fixed-window admission limiter.
type RateLimitConfig struct {
	WindowSeconds int    `yaml:"window_seconds" json:"window_seconds"`
	MaxRequests   int    `yaml:"max_requests" json:"max_requests"`
	RejectStatus  int    `yaml:"reject_status" json:"reject_status"`
	RejectMessage string `yaml:"reject_message" json:"reject_message"`
}

// Window returns the configured window duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// SecurityConfig selects which security headers admitted responses carry.
// Each header accepts false (off), true (built-in value), or a string
// (replacement value) in the config file. Headers left unset are omitted
// entirely. ContentSecurityPolicy has no built-in value and is only sent
// when set to a non-empty string. HideIdentity strips headers that reveal
// the serving stack (Server, X-Powered-By) from every admitted response.
type SecurityConfig struct {
	ContentTypeOptions    HeaderValue `yaml:"content_type_options" json:"content_type_options"`
	FrameOptions          HeaderValue `yaml:"frame_options" json:"frame_options"`
	XSSProtection         HeaderValue `yaml:"xss_protection" json:"xss_protection"`
	StrictTransport       HeaderValue `yaml:"strict_transport_security" json:"strict_transport_security"`
	ContentSecurityPolicy HeaderValue `yaml:"content_security_policy" json:"content_security_policy"`
	HideIdentity          bool        `yaml:"hide_identity" json:"hide_identity"`
}

// AuthConfig tunes token minting and the optional status endpoint guard.
// Secret signs tokens and PasswordHash is the bcrypt hash the token mint
// endpoint verifies against; both must be set for minting over HTTP.
type AuthConfig struct {
	Secret          string `yaml:"secret" json:"-"`
	PasswordHash    string `yaml:"password_hash" json:"-"`
	RequireToken    bool   `yaml:"require_token" json:"require_token"`
	TokenTTLSeconds int    `yaml:"token_ttl_seconds" json:"token_ttl_seconds"`
}

// TokenTTL returns the configured token lifetime, or the default when unset.
func (c AuthConfig) TokenTTL() time.Duration {
	if c.TokenTTLSeconds <= 0 {
		return defaults.TokenTTL
	}
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

// HeaderValue is a security header setting that accepts either a boolean or
// a string: false disables the header, true applies the built-in value, and
// a string replaces the built-in value. The zero value means unset, and an
// unset header is omitted from responses.
type HeaderValue struct {
	set      bool
	disabled bool
	override string
}

// Resolve returns the header value to apply given its built-in default.
// The second return is false when the header is unset or disabled.
func (h HeaderValue) Resolve(builtin string) (string, bool) {
	if !h.set || h.disabled {
		return "", false
	}
	if h.override != "" {
		return h.override, true
	}
	return builtin, true
}

// UnmarshalYAML accepts booleans and strings. Null leaves the header unset.
func (h *HeaderValue) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*h = HeaderValue{}
		return nil
	}
	var on bool
	if err := value.Decode(&on); err == nil {
		*h = HeaderValue{set: true, disabled: !on}
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("security header value must be a boolean or a string: %w", err)
	}
	*h = HeaderValue{set: true, override: s}
	return nil
}

// MarshalYAML emits the compact form the parser accepts.
func (h HeaderValue) MarshalYAML() (any, error) {
	if !h.set {
		return nil, nil
	}
	if h.disabled {
		return false, nil
	}
	if h.override != "" {
		return h.override, nil
	}
	return true, nil
}

// UnmarshalJSON accepts booleans and strings, mirroring UnmarshalYAML.
func (h *HeaderValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*h = HeaderValue{}
		return nil
	}
	var on bool
	if err := json.Unmarshal(data, &on); err == nil {
		*h = HeaderValue{set: true, disabled: !on}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("security header value must be a boolean or a string: %w", err)
	}
	*h = HeaderValue{set: true, override: s}
	return nil
}

// MarshalJSON mirrors MarshalYAML.
func (h HeaderValue) MarshalJSON() ([]byte, error) {
	v, err := h.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// NewConfig returns a new Config with sensible defaults overridden from the
// environment. Use this when you want to customize config programmatically.
func NewConfig() *Config {
	cfg := defaultConfig()
	applyEnv(cfg)
	return cfg
}

// LoadConfig layers a YAML or JSON config file between the defaults and the
// environment: file values override defaults, environment variables override
// the file. An empty path skips the file layer.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		r, err := serializer.NewFileReaderAuto(path)
		if err != nil {
			return nil, fmt.Errorf("opening config %s: %w", path, err)
		}
		defer r.Close()
		if err := r.Deserialize(cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultConfig returns sensible defaults
func defaultConfig() *Config {
	return &Config{
		Name:    "gatehoused",
		Version: "undefined",
		Address: "",
		Port:    8080,
		RateLimit: RateLimitConfig{
			WindowSeconds: int(defaults.RateLimitWindow / time.Second),
			MaxRequests:   defaults.RateLimitMax,
			RejectStatus:  defaults.RateLimitRejectStatus,
			RejectMessage: defaults.RateLimitRejectMessage,
		},
		Auth: AuthConfig{
			TokenTTLSeconds: int(defaults.TokenTTL / time.Second),
		},
		ReadTimeout:       defaults.ServerReadTimeout,
		ReadHeaderTimeout: defaults.ServerReadHeaderTimeout,
		WriteTimeout:      defaults.ServerWriteTimeout,
		IdleTimeout:       defaults.ServerIdleTimeout,
		ShutdownTimeout:   defaults.ServerShutdownTimeout,
	}
}

// applyEnv overrides config fields from environment variables when set.
func applyEnv(cfg *Config) {
	if portStr := os.Getenv("PORT"); portStr != "" {
		var port int
		if _, err := fmt.Sscanf(portStr, "%d", &port); err == nil {
			cfg.Port = port
		}
	}

	if addr := os.Getenv("ADDRESS"); addr != "" {
		cfg.Address = addr
	}

	if windowStr := os.Getenv("RATE_LIMIT_WINDOW_SECONDS"); windowStr != "" {
		var seconds int
		if _, err := fmt.Sscanf(windowStr, "%d", &seconds); err == nil && seconds > 0 {
			cfg.RateLimit.WindowSeconds = seconds
		}
	}

	if maxStr := os.Getenv("RATE_LIMIT_MAX_REQUESTS"); maxStr != "" {
		var max int
		if _, err := fmt.Sscanf(maxStr, "%d", &max); err == nil && max > 0 {
			cfg.RateLimit.MaxRequests = max
		}
	}

	// Secrets come from the environment so config files stay shareable.
	if secret := os.Getenv("GATEHOUSE_AUTH_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}

	// Allow customization of shutdown timeout to match orchestrator
	// eviction grace periods.
	if shutdownStr := os.Getenv("SHUTDOWN_TIMEOUT_SECONDS"); shutdownStr != "" {
		var seconds int
		if _, err := fmt.Sscanf(shutdownStr, "%d", &seconds); err == nil && seconds > 0 {
			cfg.ShutdownTimeout = time.Duration(seconds) * time.Second
		}
	}
}

// Validate checks the fields a bad config file or environment could break.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "port out of range",
			map[string]any{"port": c.Port})
	}
	if c.RateLimit.RejectStatus != 0 && (c.RateLimit.RejectStatus < 400 || c.RateLimit.RejectStatus > 599) {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "reject status must be a client or server error code",
			map[string]any{"status": c.RateLimit.RejectStatus})
	}
	if c.RateLimit.WindowSeconds < 0 || c.RateLimit.MaxRequests < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "rate limit values must not be negative")
	}
	return nil
}
