package main

import (
	"path/filepath"
	"testing"

	"github.com/godseye/godseye/pkg/defaults"
)

func TestRunResumeRequiresPriorState(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	// -resume against a directory with no results.json must fail before
	// any capture work starts, not silently fall back to a fresh run.
	code := run([]string{"-u", "http://a.test", "-resume", "-silent", "-o", out})
	if code != defaults.ExitRunFailure {
		t.Fatalf("run returned %d, want %d", code, defaults.ExitRunFailure)
	}
}

func TestRunRejectsBadPort(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	code := run([]string{"-cidr", "10.0.0.0/30", "-port", "99999", "-silent", "-o", out})
	if code != defaults.ExitUsage {
		t.Fatalf("run returned %d, want %d", code, defaults.ExitUsage)
	}
}
