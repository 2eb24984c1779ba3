package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"anonctl/internal/daemonctl"
	"anonctl/internal/preflight"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	var skipChecks bool
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start anond with flags generated from anon.conf",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			cfg := ctx.configValue()
			// The run dir usually lives on a tmpfs that is empty after boot.
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			if !skipChecks {
				if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
					colorize := shouldColorize(stdout)
					for _, r := range failed {
						fmt.Fprintln(stdout, renderStatusLine(r.Name, statusError, r.Detail, colorize))
					}
					return errors.New("preflight checks failed (use --skip-checks to launch anyway)")
				}
			}

			result, err := ctx.controller(cmd.Context()).EnsureStarted(cmd.Context())
			if err != nil {
				return err
			}
			switch result.State {
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintf(stdout, "Daemon already running (pid %d)\n", result.PID)
			case daemonctl.StartStateStarted:
				fmt.Fprintf(stdout, "Daemon started (pid %d)\n", result.PID)
				if msg := strings.TrimSpace(result.Message); msg != "" {
					fmt.Fprintln(stdout, msg)
				}
			}
			return nil
		},
	}
	startCmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Launch even when preflight checks fail")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop anond (RPC stop, then SIGTERM after the grace period)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			cfg := ctx.configValue()
			result, err := ctx.controller(cmd.Context()).StopAndTerminate(cmd.Context(), cfg.StopGrace())
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.StopAcknowledged {
				fmt.Fprintln(stdout, "Stop request acknowledged")
			}
			if result.Terminated {
				fmt.Fprintf(stdout, "Sent SIGTERM to daemon process (pid %d)\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, config, and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := ctx.controller(cmd.Context()).BuildStatusSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("System Status", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range snap.SystemChecks {
				fmt.Fprintln(stdout, renderStatusLine(line.Label, statusKindFromSeverity(line.Severity), line.Detail, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(snap.Dependencies, snap.DependencySummary, colorize) {
				fmt.Fprintln(stdout, line)
			}

			if len(snap.Processes) == 0 {
				return nil
			}
			fmt.Fprintln(stdout)
			for _, line := range renderSectionHeader("Processes", colorize) {
				fmt.Fprintln(stdout, line)
			}
			rows := make([][]string, 0, len(snap.Processes))
			for _, proc := range snap.Processes {
				rows = append(rows, []string{fmt.Sprint(proc.PID), orDash(redactCmdline(proc.Cmdline))})
			}
			fmt.Fprint(stdout, renderTable([]string{"PID", "Command"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}

	return []*cobra.Command{startCmd, stopCmd, statusCmd}
}

// redactCmdline masks the value of any -rpcpassword flag.
func redactCmdline(cmdline string) string {
	fields := strings.Split(cmdline, " ")
	for i, f := range fields {
		if strings.HasPrefix(f, "-rpcpassword=") {
			fields[i] = "-rpcpassword=" + secretMask
		}
	}
	return strings.Join(fields, " ")
}
