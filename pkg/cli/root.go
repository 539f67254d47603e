/*
Copyright © 2026 Gatehouse Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/gatehouse-io/gatehouse/pkg/logging"
	"github.com/gatehouse-io/gatehouse/pkg/serializer"
)

const (
	name           = "gatehoused"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Flags shared by commands that emit structured output.
var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}
	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage: fmt.Sprintf("Output format (supported values: %s)",
			strings.Join(serializer.SupportedFormats(), ", ")),
	}
)

// Root assembles the top-level command with all subcommands attached.
func Root() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "HTTP gate server and client tooling",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars(logging.LogLevelEnvVar),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			tokenCmd(),
			hashCmd(),
			statusCmd(),
			routesCmd(),
		},
	}
}

// Run executes the CLI with the given process arguments. The command
// context is cancelled on SIGINT or SIGTERM so long-running commands can
// shut down gracefully.
func Run(args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	return Root().Run(ctx, args)
}
