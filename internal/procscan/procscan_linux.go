//go:build linux

package procscan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Find lists processes under s.Root running name (see matchesName),
// ordered by PID. Processes that exit mid-scan are skipped.
func (s Scanner) Find(name string) ([]Process, error) {
	root := s.Root
	if root == "" {
		root = "/proc"
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read process table: %w", err)
	}

	var found []Process
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(root, entry.Name(), "cmdline"))
		if err != nil {
			continue
		}
		cmdline, argv := joinCmdline(raw)
		if !matchesName(argv, name) {
			continue
		}
		found = append(found, Process{PID: pid, Cmdline: cmdline})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].PID < found[j].PID })
	return found, nil
}
