package cli

import (
	"github.com/spf13/cobra"
)

func addWorkspaceCommands(root *cobra.Command, a *app) {
	root.AddCommand(&cobra.Command{
		Use:   "handshake <user_key> [name]",
		Short: "Register or re-open a workspace and show its summary",
		Long: `Register the workspace if it is new, or confirm it if it exists, and
print its goal and story counts. A name replaces the stored one; omit it
to keep the current name.

Examples:
  storygoal handshake alice "Alice Liddell"
  storygoal handshake alice -o text`,
		Args: positional(1, 2, "<user_key> [name]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			summary, err := st.EnsureWorkspace(cmd.Context(), args[0], optionalArg(args, 1))
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), summary)
		},
	})
}
