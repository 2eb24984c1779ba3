package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"anonctl/internal/config"
	"anonctl/internal/preflight"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage anonctl's own configuration file",
	}
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	return configCmd
}

// initTarget resolves where config init writes, defaulting to the user config dir.
func initTarget(explicit string) (string, error) {
	explicit = strings.TrimSpace(explicit)
	if explicit == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(explicit)
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			_, statErr := os.Stat(target)
			switch {
			case statErr == nil && !overwrite:
				return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
			case statErr != nil && !errors.Is(statErr, fs.ErrNotExist):
				return fmt.Errorf("inspect %s: %w", target, statErr)
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Write the sample here instead of the default location")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and report the resolved settings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var explicit string
			if ctx.configFlag != nil {
				explicit = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, path, exists, err := config.Load(explicit)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			source := path
			if !exists {
				source += " (not found, using defaults)"
			}
			rows := [][]string{
				{"config file", source},
				{"node config", cfg.Paths.NodeConf},
				{"data dir", cfg.Paths.DataDir},
				{"run dir", cfg.Paths.RunDir},
				{"log dir", cfg.Paths.LogDir},
				{"daemon binary", cfg.Daemon.Binary},
				{"rpc endpoint", fmt.Sprintf("%s (mainnet %d, testnet %d)", cfg.RPC.Host, cfg.RPCPortFor(false), cfg.RPCPortFor(true))},
				{"start timeout", cfg.StartTimeout().String()},
				{"stop grace", cfg.StopGrace().String()},
				{"extra args", strconv.Itoa(len(cfg.Daemon.ExtraArgs))},
			}
			fmt.Fprint(out, renderTable([]string{"Setting", "Value"}, rows, nil))

			// The node config belongs to the daemon; problems there are reported, not fatal.
			if check := preflight.CheckNodeConf(cfg.Paths.NodeConf); !check.Passed {
				fmt.Fprintf(out, "Warning: %s\n", check.Detail)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
