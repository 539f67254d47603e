package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gatehouse-io/gatehouse/pkg/logging"
	"github.com/gatehouse-io/gatehouse/pkg/ratelimit"
	"github.com/gatehouse-io/gatehouse/pkg/router"
	"github.com/gatehouse-io/gatehouse/pkg/shutdown"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Server is the HTTP facade: a fixed-window admission gate in front of an
// ordered path-pattern router, with health, readiness, and metrics
// endpoints mounted outside the gate.
type Server struct {
	config     *Config
	httpServer *http.Server

	limiter *ratelimit.Limiter
	routes  *router.Router[HandlerFunc]

	coordinator     *shutdown.Coordinator
	securityHeaders []headerPair
	hideIdentity    bool

	// rejectLog samples denial logging so a flood cannot drown the log.
	rejectLog rate.Sometimes

	mu    sync.RWMutex
	ready bool
	fatal context.CancelCauseFunc
}

// Option configures the server
type Option func(*Config)

// WithName sets server name
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithVersion sets server version
func WithVersion(version string) Option {
	return func(c *Config) {
		c.Version = version
	}
}

// WithAddress sets the listen address
func WithAddress(address string) Option {
	return func(c *Config) {
		c.Address = address
	}
}

// WithPort sets the listen port
func WithPort(port int) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// WithRateLimit sets the admission window and the requests admitted per key
// per window.
func WithRateLimit(window time.Duration, max int) Option {
	return func(c *Config) {
		c.RateLimit.WindowSeconds = int(window / time.Second)
		c.RateLimit.MaxRequests = max
	}
}

// WithRejection sets the status code and plain-text body written on denial.
func WithRejection(status int, message string) Option {
	return func(c *Config) {
		c.RateLimit.RejectStatus = status
		c.RateLimit.RejectMessage = message
	}
}

// WithSecurity replaces the security header configuration.
func WithSecurity(sec SecurityConfig) Option {
	return func(c *Config) {
		c.Security = sec
	}
}

// WithShutdownTimeout bounds the drain plus cleanup phases.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ShutdownTimeout = timeout
	}
}

// WithOnReady sets a callback invoked once the server starts accepting
// traffic.
func WithOnReady(fn func()) Option {
	return func(c *Config) {
		c.OnReady = fn
	}
}

// WithOnStopping sets a callback invoked when shutdown begins.
func WithOnStopping(fn func()) Option {
	return func(c *Config) {
		c.OnStopping = fn
	}
}

// New creates a new server with options applied over the environment-aware
// defaults.
func New(opts ...Option) *Server {
	cfg := NewConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a new server from a prepared config, normalizing
// any zero-valued admission fields.
func NewWithConfig(cfg *Config) *Server {
	normalize(cfg)

	s := &Server{
		config: cfg,
		limiter: ratelimit.New(
			ratelimit.WithWindow(cfg.RateLimit.Window()),
			ratelimit.WithMax(cfg.RateLimit.MaxRequests),
		),
		routes:          router.New[HandlerFunc](),
		coordinator:     shutdown.New(shutdown.WithTimeout(cfg.ShutdownTimeout)),
		securityHeaders: resolveSecurityHeaders(cfg.Security),
		hideIdentity:    cfg.Security.HideIdentity,
		rejectLog:       rate.Sometimes{First: 5, Interval: 10 * time.Second},
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:           mux,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          logging.NewLogLogger(slog.LevelError),
	}

	return s
}

// normalize fills zero-valued fields so the pipeline never consults an
// unset config.
func normalize(cfg *Config) {
	def := defaultConfig()

	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		cfg.RateLimit.WindowSeconds = def.RateLimit.WindowSeconds
	}
	if cfg.RateLimit.MaxRequests <= 0 {
		cfg.RateLimit.MaxRequests = def.RateLimit.MaxRequests
	}
	if cfg.RateLimit.RejectStatus == 0 {
		cfg.RateLimit.RejectStatus = def.RateLimit.RejectStatus
	}
	if cfg.RateLimit.RejectMessage == "" {
		cfg.RateLimit.RejectMessage = def.RateLimit.RejectMessage
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = def.ReadHeaderTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
}

// setupRoutes configures endpoints
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// System endpoints (no admission control)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	// Everything else flows through the pipeline.
	mux.HandleFunc("/", s.pipeline())
}

// Route registers a handler for a method and path pattern. Patterns match
// in registration order; re-registering a pattern replaces its handler
// without changing its position.
func (s *Server) Route(method, pattern string, handler HandlerFunc) error {
	if handler == nil {
		return errors.New("nil handler")
	}
	if err := s.routes.Handle(method, pattern, handler); err != nil {
		return err
	}
	registeredRoutes.Set(float64(s.routes.Len()))
	return nil
}

// Routes lists registered patterns as "METHOD /pattern" strings in
// registration order.
func (s *Server) Routes() []string {
	return s.routes.Routes()
}

// Stats returns a snapshot of admission counters.
func (s *Server) Stats() ratelimit.Stats {
	return s.limiter.Stats()
}

// OnDrain registers a drain step run sequentially when shutdown begins,
// after the listener stops accepting connections.
func (s *Server) OnDrain(name string, fn shutdown.CleanupFunc) {
	s.coordinator.RegisterDrain(name, fn)
}

// OnShutdown registers a cleanup run concurrently after the drain phase.
func (s *Server) OnShutdown(name string, fn shutdown.CleanupFunc) {
	s.coordinator.Register(name, fn)
}

// stop requests termination with the given cause. Safe from any goroutine.
func (s *Server) stop(err error) {
	s.mu.RLock()
	cancel := s.fatal
	s.mu.RUnlock()

	if cancel != nil {
		cancel(err)
		return
	}
	slog.Error("server stop requested before Run", "cause", err)
}

// Run starts the server and blocks until the context is canceled or a
// fatal error stops it. The listener and all registered shutdown steps
// drain through the coordinator before Run returns.
func (s *Server) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	s.mu.Lock()
	s.fatal = cancel
	s.mu.Unlock()

	s.coordinator.RegisterDrain("http-listener", func(ctx context.Context) error {
		return s.httpServer.Shutdown(ctx)
	})
	s.coordinator.Register("rate-limiter", func(ctx context.Context) error {
		stats := s.limiter.Stats()
		slog.Info("rate limiter final state",
			"keys", stats.Keys,
			"allowed", stats.Allowed,
			"denied", stats.Denied,
			"evicted", stats.Evicted)
		s.limiter.Close()
		return nil
	})

	// The eviction sweeper lives for the duration of the run.
	go func() {
		_ = s.limiter.Run(runCtx)
	}()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"name", s.config.Name,
			"version", s.config.Version,
			"address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	s.SetReady(true)
	if s.config.OnReady != nil {
		s.config.OnReady()
	}

	var runErr error
	select {
	case err := <-errChan:
		runErr = fmt.Errorf("server failed: %w", err)
	case <-runCtx.Done():
		if cause := context.Cause(runCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			runErr = cause
			slog.Error("fatal error, shutting down", "cause", cause)
		} else {
			slog.Info("shutdown signal received")
		}
	}

	s.SetReady(false)
	if s.config.OnStopping != nil {
		s.config.OnStopping()
	}

	s.coordinator.Shutdown(context.Background())

	if runErr != nil {
		return runErr
	}
	slog.Info("server stopped gracefully")
	return nil
}
