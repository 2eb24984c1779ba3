package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckCompanion reports the binary named companion that ships beside
// primary. Release archives put anon-cli next to anond, so a copy in the
// daemon's directory wins over one found on PATH.
func CheckCompanion(req Requirement, primary string) Status {
	status := Status{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	companion := strings.TrimSpace(req.Command)
	if companion == "" {
		status.Detail = "command not configured"
		return status
	}

	if filepath.Base(companion) == companion {
		if resolved, err := exec.LookPath(strings.TrimSpace(primary)); err == nil {
			candidate := filepath.Join(filepath.Dir(resolved), executableName(companion))
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				status.Command = candidate
				status.Available = true
				return status
			}
		}
	}

	if resolved, err := exec.LookPath(companion); err == nil {
		status.Command = resolved
		status.Available = true
		return status
	}
	status.Command = companion
	status.Detail = fmt.Sprintf("binary %q not found", companion)
	return status
}

func executableName(name string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name + ".exe"
	}
	return name
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
