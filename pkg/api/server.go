package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/gatehouse-io/gatehouse/pkg/logging"
	"github.com/gatehouse-io/gatehouse/pkg/server"
	"golang.org/x/sync/errgroup"
)

const (
	name           = "gatehoused"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/gatehouse-io/gatehouse/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the gate server and blocks until shutdown.
// It loads configuration, mounts the application routes, and stops on
// SIGINT or SIGTERM. Returns an error if the server fails to start or
// stops for any reason other than a requested shutdown.
func Serve(ctx context.Context, configPath string) error {
	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Name = name
	cfg.Version = version
	cfg.OnReady = notifyReady
	cfg.OnStopping = notifyStopping

	s := server.NewWithConfig(cfg)

	h, err := newHandlers(s, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up handlers: %w", err)
	}
	if err := h.mount(s); err != nil {
		return fmt.Errorf("failed to mount routes: %w", err)
	}

	// Stop on termination signals
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		return s.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}

// notifyReady reports readiness to systemd. No-op outside a unit with
// Type=notify.
func notifyReady() {
	ok, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		slog.Warn("systemd ready notification failed", "error", err)
		return
	}
	if ok {
		slog.Debug("notified systemd", "state", "ready")
	}
}

// notifyStopping reports imminent shutdown to systemd.
func notifyStopping() {
	ok, err := daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err != nil {
		slog.Warn("systemd stopping notification failed", "error", err)
		return
	}
	if ok {
		slog.Debug("notified systemd", "state", "stopping")
	}
}
