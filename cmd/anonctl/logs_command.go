package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"anonctl/internal/config"
	"anonctl/internal/logs"
	"anonctl/internal/nodeconf"
)

const (
	logSourceDaemon  = "daemon"
	logSourceDebug   = "debug"
	logSourceAnonctl = "anonctl"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var source string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the daemon logs",
		Long: "Show recent log lines.\n\n" +
			"Sources: daemon (anond stdout/stderr captured by start), " +
			"debug (debug.log in the node data directory), anonctl (this tool's JSON log).",
		RunE: func(cmd *cobra.Command, args []string) error {
			if lines < 0 {
				return fmt.Errorf("--lines must be zero or positive")
			}
			path, err := logPathFor(ctx.configValue(), source)
			if err != nil {
				return err
			}

			recent, offset, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(recent) == 0 && !follow {
				fmt.Fprintf(out, "No log lines in %s\n", path)
				return nil
			}
			for _, line := range recent {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			err = logs.Follow(cmd.Context(), path, offset, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	cmd.Flags().StringVar(&source, "source", logSourceDaemon, "Log to read: daemon, debug, or anonctl")
	return cmd
}

func logPathFor(cfg *config.Config, source string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case logSourceDaemon, "":
		return cfg.DaemonLogFile(), nil
	case logSourceAnonctl:
		return filepath.Join(cfg.Paths.LogDir, "anonctl.log"), nil
	case logSourceDebug:
		return debugLogPath(cfg), nil
	default:
		return "", fmt.Errorf("unknown log source %q", source)
	}
}

// debugLogPath follows the node config's datadir and testnet settings, as
// the daemon does when placing debug.log.
func debugLogPath(cfg *config.Config) string {
	dataDir := cfg.Paths.DataDir
	record, err := nodeconf.Parse(cfg.Paths.NodeConf)
	if err != nil {
		record = nodeconf.NewRecord()
	}
	if dir, ok := record.Get(nodeconf.KeyDataDir); ok && strings.TrimSpace(dir) != "" {
		if expanded, err := config.ExpandPath(strings.TrimSpace(dir)); err == nil {
			dataDir = expanded
		}
	}
	if record.IsTestnet() {
		dataDir = filepath.Join(dataDir, "testnet3")
	}
	return filepath.Join(dataDir, "debug.log")
}
