package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"anonctl/internal/logging"
	"anonctl/internal/nodeconf"
)

type probeResult struct {
	PID  int              `json:"pid,omitempty"`
	Args nodeconf.CmdArgs `json:"args"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var cmdline string
	var shell, reveal, asJSON bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Extract RPC credentials from a daemon command line",
		Long: "Parse --cmd, or scan running anond processes and parse each\n" +
			"command line for -rpcuser, -rpcpassword and -testnet.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var results []probeResult
			if cmd.Flags().Changed("cmd") {
				parsed, err := parseCommandLine(cmdline, shell)
				if err != nil {
					return err
				}
				results = append(results, probeResult{Args: parsed})
			} else {
				running, err := ctx.controller(cmd.Context()).Running()
				if err != nil {
					return fmt.Errorf("scan processes: %w", err)
				}
				for _, proc := range running {
					parsed, err := parseCommandLine(proc.Cmdline, shell)
					if err != nil {
						ctx.logger(cmd.Context()).Warn("unparsable command line",
							logging.Int(logging.FieldPID, proc.PID), logging.Error(err))
						continue
					}
					results = append(results, probeResult{PID: proc.PID, Args: parsed})
				}
			}

			if !reveal {
				for i := range results {
					if results[i].Args.Password != "" {
						results[i].Args.Password = secretMask
					}
				}
			}
			if asJSON {
				return writeJSON(cmd, results)
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No running daemon found")
				return nil
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				pid := "-"
				if r.PID > 0 {
					pid = strconv.Itoa(r.PID)
				}
				rows = append(rows, []string{pid, orDash(r.Args.User), orDash(r.Args.Password), yesNo(r.Args.IsTestnet)})
			}
			fmt.Fprint(out, renderTable([]string{"PID", "User", "Password", "Testnet"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
	cmd.Flags().StringVar(&cmdline, "cmd", "", "Command line to parse instead of scanning processes")
	cmd.Flags().BoolVar(&shell, "shell", false, "Tokenize with shell quoting rules instead of single spaces")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show passwords in clear text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func parseCommandLine(cmdline string, shell bool) (nodeconf.CmdArgs, error) {
	if !shell {
		return nodeconf.ParseCmdArgs(cmdline), nil
	}
	parsed, err := nodeconf.ParseCmdArgsShell(strings.TrimSpace(cmdline))
	if err != nil {
		return nodeconf.CmdArgs{}, fmt.Errorf("parse command line: %w", err)
	}
	return parsed, nil
}
