// ABOUTME: Tests for version command
// ABOUTME: Verifies version information display

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionVariables(t *testing.T) {
	if Version == "" {
		t.Error("expected Version to be set")
	}
	if Commit == "" {
		t.Error("expected Commit to be set")
	}
	if BuildDate == "" {
		t.Error("expected BuildDate to be set")
	}
}

func TestVersionCommandOutput(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	if !strings.HasPrefix(out, "storefeed "+Version) {
		t.Errorf("expected output to start with version line, got %q", out)
	}
	if !strings.Contains(out, "commit:  "+Commit) {
		t.Errorf("expected commit in output, got %q", out)
	}
}
