package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"anonctl/internal/nodeconf"
)

func newConfCommand(ctx *commandContext) *cobra.Command {
	confCmd := &cobra.Command{
		Use:   "conf",
		Short: "Inspect the node's anon.conf",
	}
	confCmd.AddCommand(newConfShowCommand(ctx))
	confCmd.AddCommand(newConfArgsCommand(ctx))
	return confCmd
}

// nodeConfPath returns the explicit --path value or the configured node config.
func (c *commandContext) nodeConfPath(explicit string) string {
	if path := strings.TrimSpace(explicit); path != "" {
		return path
	}
	return c.configValue().Paths.NodeConf
}

func newConfShowCommand(ctx *commandContext) *cobra.Command {
	var path string
	var strict, reveal, asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the parsed node config",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ctx.nodeConfPath(path)
			var record *nodeconf.Record
			var parseErr error
			if strict {
				record, parseErr = nodeconf.Parser{}.ParseFileStrict(target)
			} else {
				record, parseErr = nodeconf.Parse(target)
			}
			var malformed *nodeconf.MalformedLinesError
			if parseErr != nil && !errors.As(parseErr, &malformed) {
				return fmt.Errorf("read node config %s: %w", target, parseErr)
			}

			if asJSON {
				values := record.Map()
				if !reveal {
					if _, ok := values[nodeconf.KeyRPCPassword]; ok {
						values[nodeconf.KeyRPCPassword] = secretMask
					}
				}
				if err := writeJSON(cmd, values); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Node config: %s\n", target)
				rows := make([][]string, 0, record.Len())
				for _, key := range record.Keys() {
					value, _ := record.Get(key)
					if key == nodeconf.KeyRPCPassword {
						value = maskSecret(value, reveal)
					}
					rows = append(rows, []string{key, value, yesNo(nodeconf.IsKnownKey(key))})
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "No settings defined")
				} else {
					fmt.Fprint(out, renderTable([]string{"Key", "Value", "Known"}, rows, nil))
				}
			}
			if malformed != nil {
				return fmt.Errorf("node config %s: %w", target, malformed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "Node config path (defaults to the configured node_conf)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when lines lack a key=value separator")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show rpcpassword in clear text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newConfArgsCommand(ctx *commandContext) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "args",
		Short: "Print the daemon flags equivalent to the node config",
		Long: "Print one -key=value flag per line in config order.\n" +
			"rpcuser and rpcpassword are never emitted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ctx.nodeConfPath(path)
			record, err := nodeconf.Parse(target)
			if err != nil {
				return fmt.Errorf("read node config %s: %w", target, err)
			}
			out := cmd.OutOrStdout()
			for _, arg := range nodeconf.Args(record) {
				fmt.Fprintln(out, arg)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "Node config path (defaults to the configured node_conf)")
	return cmd
}
