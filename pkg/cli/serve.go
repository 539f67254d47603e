/*
Copyright © 2026 Gatehouse Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/gatehouse-io/gatehouse/pkg/api"
	"github.com/gatehouse-io/gatehouse/pkg/logging"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Run the gate server",
		Description: `Run the HTTP gate server in the foreground until interrupted.

The server fronts application handlers with per-client admission control,
request identity, security headers, and graceful shutdown. Configuration
comes from an optional YAML or JSON file; environment variables take
precedence over file values.

# Examples

Run with defaults (port 8080):
  gatehoused serve

Run with a config file:
  gatehoused serve --config /etc/gatehouse/config.yaml

Run on a different port:
  PORT=9090 gatehoused serve`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML or JSON config file",
				Sources: cli.EnvVars("GATEHOUSE_CONFIG"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// The server resolves its log level from the environment.
			if level := cmd.String("log-level"); level != "" {
				os.Setenv(logging.LogLevelEnvVar, level)
			}
			return api.Serve(ctx, cmd.String("config"))
		},
	}
}
