package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteNodeConf writes a node config file, creating parent directories.
func WriteNodeConf(t testing.TB, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SleepingDaemonScript returns a daemon stub that records its arguments one
// per line in argsFile and runs until it receives SIGTERM.
func SleepingDaemonScript(argsFile string) string {
	return "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" > '" + argsFile + "'\n" +
		"trap 'kill $! 2>/dev/null; exit 0' TERM\n" +
		"sleep 30 &\n" +
		"wait\n"
}
