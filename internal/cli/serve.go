package cli

import (
	"github.com/spf13/cobra"

	"github.com/HendryAvila/storygoal/internal/server"
)

func addServeCommand(root *cobra.Command, a *app) {
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Start the Model Context Protocol server over stdio so coding assistants
can call the store operations as tools. stdout carries protocol frames
only; logs go to stderr and the optional log file.

Stop it with Ctrl-C or by closing stdin.`,
		Args: positional(0, 0, "no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			server.Version = a.info.Version
			if server.Version == "" {
				server.Version = "dev"
			}
			s := server.New(st, a.log.Logger)
			return server.ServeStdio(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout(), a.log.Logger)
		},
	})
}
