// Package procscan finds running processes by executable name and reports
// their command lines.
package procscan

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned when the platform process table cannot be read.
var ErrUnsupported = errors.New("process scanning is not supported on this platform")

// shells that run a script as argv[1] when it is executed through a shebang.
var shells = map[string]bool{"sh": true, "bash": true, "dash": true, "zsh": true}

// Process is one matching process.
type Process struct {
	PID     int
	Cmdline string
}

// Scanner reads a procfs-style tree rooted at Root. An empty Root means /proc.
type Scanner struct {
	Root string
}

// Find reports processes running the executable name, using the system
// process table. See Scanner.Find for the matching rules.
func Find(name string) ([]Process, error) {
	return Scanner{}.Find(name)
}

// joinCmdline turns a NUL-separated cmdline blob into a space-joined string.
// The trailing terminator is dropped; empty blobs (kernel threads, zombies)
// yield "".
func joinCmdline(raw []byte) (string, []string) {
	trimmed := strings.TrimRight(string(raw), "\x00")
	if trimmed == "" {
		return "", nil
	}
	argv := strings.Split(trimmed, "\x00")
	return strings.Join(argv, " "), argv
}

// matchesName reports whether argv runs name. A name containing a path
// separator must equal argv[0] exactly; a bare name is compared against the
// base name, ignoring a Windows .exe suffix. A script started through a shell
// matches on argv[1], but only by exact path: a bare name would match any
// wrapper script that happens to share it.
func matchesName(argv []string, name string) bool {
	if len(argv) == 0 || name == "" {
		return false
	}
	byPath := strings.ContainsAny(name, `/\`)
	if byPath {
		if filepath.Clean(argv[0]) == filepath.Clean(name) {
			return true
		}
		return len(argv) > 1 && shells[executableBase(argv[0])] &&
			filepath.Clean(argv[1]) == filepath.Clean(name)
	}
	return executableBase(argv[0]) == executableBase(name)
}

func executableBase(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".exe")
}
