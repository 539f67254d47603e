// Package cli implements the command-line interface for the Gatehouse gatehoused tool.
//
// # Overview
//
// The gatehoused CLI runs the gate server and provides client tooling for
// operating it: minting and verifying bearer tokens, hashing credentials
// for the config file, and querying a running server's status and route
// table. It is designed for operators fronting internal HTTP services
// with admission control.
//
// # Commands
//
// serve - Run the gate server:
//
//	gatehoused serve [--config FILE]
//
// Runs the HTTP server in the foreground until interrupted. Configuration
// comes from an optional YAML or JSON file with environment variables
// taking precedence.
//
// token new - Mint a signed bearer token:
//
//	gatehoused token new --secret SECRET --subject deploy-bot [--ttl 15m]
//
// Mints an HMAC-signed token for the given subject. The secret must match
// the server's auth.secret.
//
// token verify - Verify a token and print its claims:
//
//	gatehoused token verify --secret SECRET --token TOKEN
//
// Exits non-zero when the token is invalid or expired.
//
// hash - Hash a password for the auth config:
//
//	gatehoused hash --password 'open-sesame'
//
// Produces a bcrypt hash for the auth.password_hash config field.
//
// status - Query a running server:
//
//	gatehoused status [--server URL] [--token TOKEN]
//
// Fetches /v1/status and prints version, uptime, readiness, routes, and
// admission counters.
//
// routes - List registered routes:
//
//	gatehoused routes [--server URL]
//
// Prints the server's route table in match order.
//
// # Global Flags
//
//	--output, -o     Output file path (default: stdout)
//	--format, -t     Output format: yaml, json, table (default: yaml)
//	--log-level      Log level: debug, info, warn, error (default: info)
//	--help, -h       Show command help
//	--version, -v    Show version information
//
// # Output Formats
//
// YAML (default):
//   - Human-readable, preserves structure
//   - Suitable for version control
//
// JSON:
//   - Machine-parseable, compact
//   - Suitable for programmatic consumption
//
// Table:
//   - Flattened key/value text representation
//   - Suitable for terminal viewing
//
// # Usage Examples
//
// Run the server with a config file:
//
//	gatehoused serve --config /etc/gatehouse/config.yaml
//
// Mint a token and use it to query a protected server:
//
//	TOKEN=$(gatehoused token new --subject ops --format json | jq -r .token)
//	gatehoused status --server https://gate.example.com --token "$TOKEN"
//
// Prepare credentials for the config file:
//
//	gatehoused hash --password 'open-sesame' --format yaml
//
// # Environment Variables
//
//	LOG_LEVEL              Set logging verbosity (debug, info, warn, error)
//	PORT                   Server port for the serve command
//	GATEHOUSE_CONFIG       Default config file path for the serve command
//	GATEHOUSE_AUTH_SECRET  Token signing secret for serve and token commands
//	GATEHOUSE_SERVER       Default server URL for status and routes
//	GATEHOUSE_TOKEN        Default bearer token for status and routes
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure)
//
// # Architecture
//
// The CLI uses the urfave/cli/v3 framework and delegates to specialized packages:
//   - pkg/api - Server assembly and lifecycle
//   - pkg/auth - Token minting, verification, and password hashing
//   - pkg/serializer - Output formatting and HTTP reads
//   - pkg/logging - Structured logging
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/gatehouse-io/gatehouse/pkg/cli.version=1.0.0'"
package cli
