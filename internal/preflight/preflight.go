package preflight

import (
	"context"
	"os"

	"anonctl/internal/config"
	"anonctl/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that gate a daemon launch. A missing data
// directory is fine because the daemon creates it.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if _, err := os.Stat(cfg.Paths.DataDir); err == nil {
		results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	}
	results = append(results, CheckDirectoryAccess("Run directory", cfg.Paths.RunDir))
	results = append(results, CheckNodeConf(cfg.Paths.NodeConf))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// CheckSystemDeps evaluates the daemon binary and its companion CLI.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	statuses := deps.CheckBinaries([]deps.Requirement{{
		Name:        "anond",
		Command:     cfg.Daemon.Binary,
		Description: "Node daemon",
	}})
	statuses = append(statuses, deps.CheckCompanion(deps.Requirement{
		Name:        "anon-cli",
		Command:     cfg.Daemon.CLIBinary,
		Description: "Command-line RPC client",
		Optional:    true,
	}, cfg.Daemon.Binary))
	return statuses
}

// CheckRPCFromConfig probes the daemon with credentials already reconciled by
// the caller.
func CheckRPCFromConfig(ctx context.Context, cfg *config.Config, user, password string, testnet bool) Result {
	if cfg == nil {
		return Result{Name: rpcCheckName, Detail: "Unknown"}
	}
	return CheckRPC(ctx, cfg.RPC.Host, cfg.RPCPortFor(testnet), user, password, cfg.RPCTimeout())
}
