package cli

import (
	"github.com/spf13/cobra"

	"github.com/HendryAvila/storygoal/internal/store"
)

func addStoryCommands(root *cobra.Command, a *app) {
	root.AddCommand(&cobra.Command{
		Use:   "create-story <user_key> <title> <as_a> <i_want> <so_that> [goal_id]",
		Short: "Create a user story, optionally linked to a goal",
		Long: `Create a story in the 'defining' phase. When goal_id is given it must
name a goal in the same workspace.

Example:
  storygoal create-story alice "Homepage" "reader" "a list of posts" "I can pick one" 1a2b3c4d`,
		Args: positional(5, 6, "<user_key> <title> <as_a> <i_want> <so_that> [goal_id]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			story, err := st.CreateStory(cmd.Context(), store.CreateStoryParams{
				UserKey: args[0],
				Title:   args[1],
				AsA:     args[2],
				IWant:   args[3],
				SoThat:  args[4],
				GoalID:  optionalArg(args, 5),
			})
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), story)
		},
	})

	root.AddCommand(newListStoriesCmd(a))

	root.AddCommand(&cobra.Command{
		Use:   "update-story <user_key> <story_id> <phase> <notes>",
		Short: "Move a story to a phase and append a progress note",
		Long: `Set the story's phase and append a timestamped note. Earlier notes are
never changed. Phases: defining, developing, validating, complete.

Example:
  storygoal update-story alice 9f8e7d6c developing "API skeleton merged"`,
		Args: positional(4, 4, "<user_key> <story_id> <phase> <notes>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			story, err := st.UpdateStoryProgress(cmd.Context(), args[0], args[1], args[2], args[3])
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), story)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "get-story <user_key> <story_id>",
		Short: "Show a story with its history and goal",
		Args:  positional(2, 2, "<user_key> <story_id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			details, err := st.GetStoryDetails(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), details)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "add-criteria <user_key> <story_id> <criterion>...",
		Short: "Append acceptance criteria to a story",
		Example: `  storygoal add-criteria alice 9f8e7d6c "shows ten posts" "has a search box"`,
		Args:    positional(3, -1, "<user_key> <story_id> <criterion>..."),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			story, err := st.AddAcceptanceCriteria(cmd.Context(), args[0], args[1], args[2:])
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), story)
		},
	})
}

func newListStoriesCmd(a *app) *cobra.Command {
	var goalID, phase string
	cmd := &cobra.Command{
		Use:     "list-stories <user_key> [goal_id] [phase]",
		Aliases: []string{"stories"},
		Short:   "List stories in creation order, optionally filtered",
		Long: `List a workspace's stories. Filters combine: a goal and a phase together
return only stories matching both. Filters may be given positionally or
with --goal/--phase; pass "" positionally to skip the goal filter.

Examples:
  storygoal list-stories alice
  storygoal list-stories alice 1a2b3c4d developing
  storygoal list-stories alice --phase complete`,
		Args: positional(1, 3, "<user_key> [goal_id] [phase]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := store.StoryFilter{GoalID: optionalArg(args, 1), Phase: optionalArg(args, 2)}
			if changed(cmd.Flags(), "goal") {
				if f.GoalID != "" && f.GoalID != goalID {
					return newUsageError("goal given twice: %q and --goal %q", f.GoalID, goalID)
				}
				f.GoalID = goalID
			}
			if changed(cmd.Flags(), "phase") {
				if f.Phase != "" && f.Phase != phase {
					return newUsageError("phase given twice: %q and --phase %q", f.Phase, phase)
				}
				f.Phase = phase
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			stories, err := st.ListStories(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), stories)
		},
	}
	cmd.Flags().StringVar(&goalID, "goal", "", "only stories linked to this goal id")
	cmd.Flags().StringVar(&phase, "phase", "", "only stories in this phase")
	return cmd
}
