package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Coverage Note:
// The Serve() function blocks until shutdown and wires signal handling,
// systemd notification, and the HTTP listener together, so it is not
// unit tested directly. These tests cover the package constants and
// build variables; the handler tests in handlers_test.go cover route
// configuration and endpoint behavior. Serve() itself is exercised by
// end-to-end testing against a running binary.

// TestConstants verifies package constants are properly defined
func TestConstants(t *testing.T) {
	assert.Equal(t, "gatehoused", name)
	assert.Equal(t, "dev", versionDefault)

	// Buildtime variables exist even before ldflags stamping
	assert.NotEmpty(t, version)
	assert.NotEmpty(t, commit)
	assert.NotEmpty(t, date)
}
