/*
Copyright © 2026 Gatehouse Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/gatehouse-io/gatehouse/pkg/auth"
	"github.com/gatehouse-io/gatehouse/pkg/serializer"
)

type hashResult struct {
	Hash string `json:"hash" yaml:"hash"`
}

func hashCmd() *cli.Command {
	return &cli.Command{
		Name:                  "hash",
		EnableShellCompletion: true,
		Usage:                 "Hash a password for the auth config",
		Description: `Generate a bcrypt hash suitable for the auth.password_hash
config field. The server checks credentials presented to POST /v1/tokens
against this hash.

# Examples

  gatehoused hash --password 'open-sesame'

Write the hash into a snippet for the config file:
  gatehoused hash --password 'open-sesame' --format yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "password",
				Aliases:  []string{"p"},
				Usage:    "Password to hash",
				Required: true,
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat := serializer.Format(cmd.String("format"))
			if outFormat.IsUnknown() {
				return fmt.Errorf("unknown output format: %q", outFormat)
			}

			h, err := auth.HashPassword(cmd.String("password"))
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer w.Close()
			return w.Serialize(ctx, hashResult{Hash: h})
		},
	}
}
