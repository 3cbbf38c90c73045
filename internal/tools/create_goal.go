package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storygoal/internal/store"
)

// CreateGoalTool handles the create_goal MCP tool.
type CreateGoalTool struct {
	store *store.Store
}

// NewCreateGoalTool creates a CreateGoalTool.
func NewCreateGoalTool(s *store.Store) *CreateGoalTool {
	return &CreateGoalTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateGoalTool) Definition() mcp.Tool {
	return mcp.NewTool("create_goal",
		mcp.WithDescription(
			"Create a goal: a desired outcome that stories contribute to. "+
				"Returns the goal with its id and zero story counts.",
		),
		userKeyOption(),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short name for the outcome. Example: 'Launch the blog'"),
		),
		mcp.WithString("vision",
			mcp.Required(),
			mcp.Description("What success looks like and why it matters."),
		),
		mcp.WithString("success_metrics",
			mcp.Description("How progress will be measured. Optional."),
		),
	)
}

// Handle processes the create_goal tool call.
func (t *CreateGoalTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal, err := t.store.CreateGoal(ctx, store.CreateGoalParams{
		UserKey:        req.GetString("user_key", ""),
		Title:          req.GetString("title", ""),
		Vision:         req.GetString("vision", ""),
		SuccessMetrics: req.GetString("success_metrics", ""),
	})
	return respond(goal, err)
}
