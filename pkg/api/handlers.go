package api

import (
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gatehouse-io/gatehouse/pkg/auth"
	"github.com/gatehouse-io/gatehouse/pkg/errors"
	"github.com/gatehouse-io/gatehouse/pkg/ratelimit"
	"github.com/gatehouse-io/gatehouse/pkg/server"
)

// handlers holds the application endpoints and the state they share.
type handlers struct {
	cfg     *server.Config
	srv     *server.Server
	minter  *auth.Minter
	started time.Time
}

// newHandlers builds the endpoint set. Token issuing and verification are
// enabled only when a secret is configured.
func newHandlers(s *server.Server, cfg *server.Config) (*handlers, error) {
	h := &handlers{
		cfg:     cfg,
		srv:     s,
		started: time.Now(),
	}
	if cfg.Auth.Secret != "" {
		m, err := auth.NewMinter(cfg.Auth.Secret, auth.WithTTL(cfg.Auth.TokenTTL()))
		if err != nil {
			return nil, err
		}
		h.minter = m
	}
	return h, nil
}

// mount registers the application routes. Registration order is match
// order, so more specific patterns go first.
func (h *handlers) mount(s *server.Server) error {
	type binding struct {
		method  string
		pattern string
		handler server.HandlerFunc
	}

	routes := []binding{
		{http.MethodGet, "/v1/status", h.requireToken(h.handleStatus)},
		{http.MethodPost, "/v1/echo", h.handleEcho},
		{http.MethodGet, "/", h.handleIndex},
	}
	if h.minter != nil && h.cfg.Auth.PasswordHash != "" {
		routes = append(routes, binding{http.MethodPost, "/v1/tokens", h.handleTokenMint})
	}

	for _, r := range routes {
		if err := s.Route(r.method, r.pattern, r.handler); err != nil {
			return err
		}
	}
	return nil
}

type indexResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

type statusResponse struct {
	Name       string          `json:"name"`
	Version    string          `json:"version"`
	Started    string          `json:"started"`
	UptimeSec  int64           `json:"uptimeSec"`
	Ready      bool            `json:"ready"`
	Goroutines int             `json:"goroutines"`
	Routes     []string        `json:"routes"`
	Admission  ratelimit.Stats `json:"admission"`
}

type echoResponse struct {
	Method    string            `json:"method"`
	Path      string            `json:"path"`
	Params    map[string]string `json:"params,omitempty"`
	Query     map[string]any    `json:"query,omitempty"`
	Body      map[string]any    `json:"body,omitempty"`
	RequestID string            `json:"requestId"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	Subject   string `json:"subject"`
	ExpiresAt string `json:"expiresAt"`
}

// handleIndex reports basic service identity.
func (h *handlers) handleIndex(c *server.Context) *server.Response {
	return server.JSON(http.StatusOK, indexResponse{
		Name:    h.cfg.Name,
		Version: h.cfg.Version,
		Status:  "ok",
	})
}

// handleStatus reports runtime state including admission counters.
func (h *handlers) handleStatus(c *server.Context) *server.Response {
	now := time.Now()
	return server.JSON(http.StatusOK, statusResponse{
		Name:       h.cfg.Name,
		Version:    h.cfg.Version,
		Started:    h.started.UTC().Format(time.RFC3339),
		UptimeSec:  int64(now.Sub(h.started).Seconds()),
		Ready:      h.srv.Ready(),
		Goroutines: runtime.NumGoroutine(),
		Routes:     h.srv.Routes(),
		Admission:  h.srv.Stats(),
	})
}

// handleEcho reflects the parsed request back to the caller. Useful for
// verifying what the pipeline sees.
func (h *handlers) handleEcho(c *server.Context) *server.Response {
	return server.JSON(http.StatusOK, echoResponse{
		Method:    c.Method,
		Path:      c.Path,
		Params:    c.Params,
		Query:     c.Query,
		Body:      c.Body,
		RequestID: c.RequestID,
	})
}

// handleTokenMint exchanges valid credentials for a bearer token.
func (h *handlers) handleTokenMint(c *server.Context) *server.Response {
	subject := stringField(c.Body, "subject")
	password := stringField(c.Body, "password")
	if subject == "" || password == "" {
		return server.Error(c, errors.ErrCodeInvalidRequest, "subject and password are required")
	}

	if err := auth.VerifyPassword(h.cfg.Auth.PasswordHash, password); err != nil {
		return server.Error(c, errors.ErrCodeUnauthorized, "invalid credentials")
	}

	token, err := h.minter.Mint(subject)
	if err != nil {
		return server.Error(c, errors.ErrCodeInternal, "failed to mint token")
	}
	claims, err := h.minter.Verify(token)
	if err != nil {
		return server.Error(c, errors.ErrCodeInternal, "failed to mint token")
	}

	return server.JSON(http.StatusOK, tokenResponse{
		Token:     token,
		Subject:   claims.Subject,
		ExpiresAt: claims.Expiry().UTC().Format(time.RFC3339),
	})
}

// requireToken wraps next with bearer-token verification when the config
// demands it. A guarded route with no secret configured refuses traffic
// instead of opening up.
func (h *handlers) requireToken(next server.HandlerFunc) server.HandlerFunc {
	return func(c *server.Context) *server.Response {
		if !h.cfg.Auth.RequireToken {
			return next(c)
		}
		if h.minter == nil {
			return server.Error(c, errors.ErrCodeUnavailable, "token verification is not configured")
		}
		token := bearerToken(c)
		if token == "" {
			return server.Error(c, errors.ErrCodeUnauthorized, "missing bearer token")
		}
		if _, err := h.minter.Verify(token); err != nil {
			return server.Error(c, errors.ErrCodeUnauthorized, "invalid bearer token")
		}
		return next(c)
	}
}

// bearerToken extracts the token from the Authorization header, or returns
// empty when the header is absent or uses another scheme.
func bearerToken(c *server.Context) string {
	v := c.Headers.Get("Authorization")
	if len(v) > 7 && strings.EqualFold(v[:7], "Bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return ""
}

// stringField pulls a string value out of a decoded body, or returns empty
// when the key is absent or not a string.
func stringField(body map[string]any, key string) string {
	if v, ok := body[key].(string); ok {
		return v
	}
	return ""
}
