package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"anonctl/internal/logging"
	"anonctl/internal/nodeconf"
)

type credentialsView struct {
	User     string `json:"user"`
	Password string `json:"password"`
	Network  string `json:"network"`
	Source   string `json:"source"`
	Endpoint string `json:"endpoint"`
}

func newCredentialsCommand(ctx *commandContext) *cobra.Command {
	var reveal, asJSON bool

	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Show the RPC credentials a client should use",
		Long: "Reconcile rpcuser/rpcpassword from anon.conf with the command line\n" +
			"of a running daemon. Command-line values win field by field.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := ctx.controller(cmd.Context())
			record, err := ctrl.LoadRecord()
			if err != nil {
				return err
			}
			running, err := ctrl.Running()
			if err != nil {
				ctx.logger(cmd.Context()).Warn("process scan failed", logging.Error(err))
			}
			creds := ctrl.Credentials(record, running)
			client := ctrl.Client(record, creds)

			view := credentialsView{
				User:     creds.User,
				Password: creds.Password,
				Network:  "mainnet",
				Source:   creds.Source,
				Endpoint: client.Endpoint(),
			}
			if creds.Testnet {
				view.Network = "testnet"
			}
			if !reveal && view.Password != "" {
				view.Password = secretMask
			}
			if asJSON {
				return writeJSON(cmd, view)
			}

			rows := [][]string{
				{"User", orDash(view.User)},
				{"Password", orDash(view.Password)},
				{"Network", view.Network},
				{"Source", view.Source},
				{"Endpoint", view.Endpoint},
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			if creds.Source == nodeconf.SourceNone {
				fmt.Fprintln(cmd.OutOrStdout(), "No credentials found; set rpcuser and rpcpassword in anon.conf")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show the password in clear text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
