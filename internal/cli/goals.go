package cli

import (
	"github.com/spf13/cobra"

	"github.com/HendryAvila/storygoal/internal/store"
)

func addGoalCommands(root *cobra.Command, a *app) {
	root.AddCommand(&cobra.Command{
		Use:   "create-goal <user_key> <title> <vision> [success_metrics]",
		Short: "Create a goal",
		Long: `Create a goal, a desired outcome that stories contribute to. The
workspace is registered automatically if this is its first record.

Example:
  storygoal create-goal alice "Launch blog" "Share what we learn" "100 readers/month"`,
		Args: positional(3, 4, "<user_key> <title> <vision> [success_metrics]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			goal, err := st.CreateGoal(cmd.Context(), store.CreateGoalParams{
				UserKey:        args[0],
				Title:          args[1],
				Vision:         args[2],
				SuccessMetrics: optionalArg(args, 3),
			})
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), goal)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:     "list-goals <user_key>",
		Aliases: []string{"goals"},
		Short:   "List goals with story counts, oldest first",
		Args:    positional(1, 1, "<user_key>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			goals, err := st.ListGoals(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), goals)
		},
	})
}
