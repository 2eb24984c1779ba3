package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"anonctl/internal/deps"
	"anonctl/internal/logging"
	"anonctl/internal/nodeconf"
	"anonctl/internal/preflight"
	"anonctl/internal/procscan"
)

// Severity values used in status lines.
const (
	SeverityOK    = "ok"
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)

// StatusLine is one labelled row in the status view.
type StatusLine struct {
	Label    string
	Severity string
	Detail   string
}

// DependencyStatus is a dependency check with its display severity.
type DependencyStatus struct {
	deps.Status
	Severity string
}

// DependencySummary aggregates dependency readiness.
type DependencySummary struct {
	Total           int
	Available       int
	MissingRequired int
	MissingOptional int
	Severity        string
	Detail          string
}

// Snapshot is everything "anonctl status" reports.
type Snapshot struct {
	Running           bool
	Processes         []procscan.Process
	Credentials       nodeconf.Credentials
	SystemChecks      []StatusLine
	Dependencies      []DependencyStatus
	DependencySummary DependencySummary
}

// BuildStatusSnapshot aggregates process state, credentials, RPC
// reachability, dependencies, and directory checks.
func (c *Controller) BuildStatusSnapshot(ctx context.Context) (*Snapshot, error) {
	if c == nil || c.Config == nil {
		return nil, errors.New("configuration not available")
	}
	cfg := c.Config
	snap := &Snapshot{}

	running, err := c.Running()
	if err != nil {
		c.logger().Warn("process scan failed", logging.Error(err))
	}
	snap.Processes = running
	snap.Running = len(running) > 0

	lines := make([]StatusLine, 0, 6)
	if snap.Running {
		lines = append(lines, StatusLine{Label: "Daemon", Severity: SeverityOK, Detail: fmt.Sprintf("Running (pid %d)", running[0].PID)})
	} else {
		lines = append(lines, StatusLine{Label: "Daemon", Severity: SeverityWarn, Detail: "Not running (run `anonctl start`)"})
	}

	record, confLine := c.nodeConfStatus()
	lines = append(lines, confLine)

	snap.Credentials = c.Credentials(record, running)
	lines = append(lines, credentialsLine(snap.Credentials))

	switch {
	case !snap.Running:
		lines = append(lines, StatusLine{Label: "RPC", Severity: SeverityInfo, Detail: "Skipped (daemon not running)"})
	case snap.Credentials.Empty():
		lines = append(lines, StatusLine{Label: "RPC", Severity: SeverityWarn, Detail: "Skipped (no credentials)"})
	default:
		client := c.Client(record, snap.Credentials)
		check := preflight.CheckRPC(ctx, client.Host, client.Port, client.User, client.Password, cfg.RPCTimeout())
		lines = append(lines, resultLine(check, SeverityError))
	}

	lines = append(lines,
		resultLine(preflight.CheckDirectoryAccess("Data directory", cfg.Paths.DataDir), SeverityWarn),
		resultLine(preflight.CheckDirectoryAccess("Run directory", cfg.Paths.RunDir), SeverityWarn),
	)
	snap.SystemChecks = lines

	snap.Dependencies = ResolveDependencies(preflight.CheckSystemDeps(cfg))
	snap.DependencySummary = BuildDependencySummary(snap.Dependencies)
	return snap, nil
}

func (c *Controller) nodeConfStatus() (*nodeconf.Record, StatusLine) {
	path := c.Config.Paths.NodeConf
	record, err := nodeconf.Parse(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nodeconf.NewRecord(), StatusLine{Label: "Node config", Severity: SeverityWarn, Detail: path + " (missing)"}
	case err != nil:
		return nodeconf.NewRecord(), StatusLine{Label: "Node config", Severity: SeverityError, Detail: fmt.Sprintf("%s (%v)", path, err)}
	}
	network := "mainnet"
	if record.IsTestnet() {
		network = "testnet"
	}
	return record, StatusLine{Label: "Node config", Severity: SeverityOK, Detail: fmt.Sprintf("%s (%d keys, %s)", path, record.Len(), network)}
}

func credentialsLine(creds nodeconf.Credentials) StatusLine {
	if creds.Empty() {
		return StatusLine{Label: "Credentials", Severity: SeverityWarn, Detail: "rpcuser/rpcpassword not set"}
	}
	return StatusLine{Label: "Credentials", Severity: SeverityOK, Detail: fmt.Sprintf("user %s (from %s)", creds.User, creds.Source)}
}

func resultLine(r preflight.Result, failSeverity string) StatusLine {
	if r.Passed {
		return StatusLine{Label: r.Name, Severity: SeverityOK, Detail: r.Detail}
	}
	return StatusLine{Label: r.Name, Severity: failSeverity, Detail: r.Detail}
}

// ResolveDependencies attaches display severities to dependency checks.
func ResolveDependencies(checks []deps.Status) []DependencyStatus {
	statuses := make([]DependencyStatus, 0, len(checks))
	for _, check := range checks {
		severity := SeverityOK
		if !check.Available {
			severity = SeverityError
			if check.Optional {
				severity = SeverityWarn
			}
		}
		statuses = append(statuses, DependencyStatus{Status: check, Severity: severity})
	}
	return statuses
}

// BuildDependencySummary computes aggregate dependency readiness.
func BuildDependencySummary(statuses []DependencyStatus) DependencySummary {
	if len(statuses) == 0 {
		return DependencySummary{Severity: SeverityInfo, Detail: "No dependency checks configured"}
	}

	missingRequired, missingOptional := 0, 0
	for _, dep := range statuses {
		if dep.Available {
			continue
		}
		if dep.Optional {
			missingOptional++
		} else {
			missingRequired++
		}
	}

	missing := missingRequired + missingOptional
	available := len(statuses) - missing
	severity := SeverityOK
	if missingRequired > 0 {
		severity = SeverityError
	} else if missingOptional > 0 {
		severity = SeverityWarn
	}
	detail := fmt.Sprintf("%d/%d available", available, len(statuses))
	if missing > 0 {
		detail = fmt.Sprintf("%d/%d available (missing: %d required, %d optional)", available, len(statuses), missingRequired, missingOptional)
	}
	return DependencySummary{
		Total:           len(statuses),
		Available:       available,
		MissingRequired: missingRequired,
		MissingOptional: missingOptional,
		Severity:        severity,
		Detail:          detail,
	}
}
