package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, executableName(name))
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "anond")
	reqs := []Requirement{
		{Name: "anond", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank command status %#v", results[2])
	}
}

func TestCheckCompanionPrefersSibling(t *testing.T) {
	dir := t.TempDir()
	daemon := writeStub(t, dir, "anond")
	cli := writeStub(t, dir, "anon-cli")

	otherDir := t.TempDir()
	writeStub(t, otherDir, "anon-cli")
	t.Setenv("PATH", otherDir)

	status := CheckCompanion(Requirement{Name: "anon-cli", Command: "anon-cli"}, daemon)
	if !status.Available {
		t.Fatalf("expected sibling to be available, got %q", status.Detail)
	}
	if status.Command != cli {
		t.Fatalf("expected sibling %q, got %q", cli, status.Command)
	}
}

func TestCheckCompanionFallsBackToPath(t *testing.T) {
	daemon := writeStub(t, t.TempDir(), "anond")
	binDir := t.TempDir()
	cli := writeStub(t, binDir, "anon-cli")
	t.Setenv("PATH", binDir)

	status := CheckCompanion(Requirement{Name: "anon-cli", Command: "anon-cli"}, daemon)
	if !status.Available || status.Command != cli {
		t.Fatalf("expected PATH fallback %q, got %#v", cli, status)
	}
}

func TestCheckCompanionMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	status := CheckCompanion(Requirement{Name: "anon-cli", Command: "anon-cli", Optional: true}, "anond")
	if status.Available || status.Detail == "" || !status.Optional {
		t.Fatalf("expected optional missing companion, got %#v", status)
	}
}
