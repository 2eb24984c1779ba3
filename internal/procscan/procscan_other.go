//go:build !linux

package procscan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Find lists processes running name, ordered by PID. Root is ignored; the
// process table comes from the operating system.
func (s Scanner) Find(name string) ([]Process, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	var found []Process
	for _, p := range procs {
		// Processes owned by other users may refuse to report argv.
		argv, err := p.CmdlineSlice()
		if err != nil || !matchesName(argv, name) {
			continue
		}
		found = append(found, Process{PID: int(p.Pid), Cmdline: strings.Join(argv, " ")})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].PID < found[j].PID })
	return found, nil
}
