package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the story-goal-status MCP prompt.
// It asks the assistant for a progress review across goals and stories.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("story-goal-status",
		mcp.WithPromptDescription(
			"Review progress: every goal with its completion ratio, stories grouped by phase, "+
				"and what to pick up next.",
		),
		mcp.WithArgument("user_key",
			mcp.ArgumentDescription("Workspace to review. If omitted the assistant asks for it."),
		),
	)
}

// Handle processes the story-goal-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	target := "my workspace (ask me for the user_key first)"
	if key := argument(req, "user_key", ""); key != "" {
		target = fmt.Sprintf("workspace user_key=%q", key)
	}

	return &mcp.GetPromptResult{
		Description: "Story/goal progress review",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please review the progress of " + target + ".\n\n" +
						"1. Run `list_goals` and show each goal with completed/total stories\n" +
						"2. Run `list_stories` and group the stories by current phase\n" +
						"3. Point out stories that are linked to no goal, and goals with no stories\n" +
						"4. For stories still in 'defining', check with `get_story_details` whether they " +
						"have acceptance criteria\n" +
						"5. Suggest the next one or two stories to move forward",
				),
			},
		},
	}, nil
}
