/*
Copyright © 2026 Gatehouse Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gatehouse-io/gatehouse/pkg/auth"
)

func TestHashCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "hash.json")

	err := Root().Run(context.Background(), []string{
		name, "hash",
		"--password", "open-sesame",
		"--format", "json",
		"--output", out,
	})
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	var res hashResult
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if err := auth.VerifyPassword(res.Hash, "open-sesame"); err != nil {
		t.Errorf("hash does not verify against original password: %v", err)
	}
	if err := auth.VerifyPassword(res.Hash, "wrong-password"); err == nil {
		t.Error("hash verified against the wrong password")
	}
}
