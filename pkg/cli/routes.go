/*
Copyright © 2026 Gatehouse Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/gatehouse-io/gatehouse/pkg/serializer"
)

type routesResult struct {
	Routes []string `json:"routes" yaml:"routes"`
}

func routesCmd() *cli.Command {
	return &cli.Command{
		Name:                  "routes",
		EnableShellCompletion: true,
		Usage:                 "List the routes registered on a running server",
		Description: `Fetch the route table from a running server, in match order.

Routes are matched first to last within each method, so the printed order
is the order patterns are tried.

# Examples

  gatehoused routes --server http://localhost:8080`,
		Flags: []cli.Flag{
			serverFlag,
			bearerFlag,
			timeoutFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat := serializer.Format(cmd.String("format"))
			if outFormat.IsUnknown() {
				return fmt.Errorf("unknown output format: %q", outFormat)
			}

			status, err := fetchStatus(ctx, cmd)
			if err != nil {
				return err
			}

			raw, ok := status["routes"].([]any)
			if !ok {
				return fmt.Errorf("server response did not include routes")
			}
			routes := make([]string, 0, len(raw))
			for _, r := range raw {
				s, ok := r.(string)
				if !ok {
					return fmt.Errorf("server response included a malformed route entry")
				}
				routes = append(routes, s)
			}

			w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer w.Close()
			return w.Serialize(ctx, routesResult{Routes: routes})
		},
	}
}
