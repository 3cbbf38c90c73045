package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storygoal/internal/store"
)

// ListGoalsTool handles the list_goals MCP tool.
type ListGoalsTool struct {
	store *store.Store
}

// NewListGoalsTool creates a ListGoalsTool.
func NewListGoalsTool(s *store.Store) *ListGoalsTool {
	return &ListGoalsTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *ListGoalsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_goals",
		mcp.WithDescription(
			"List every goal in the workspace, oldest first, with live counts of "+
				"linked stories and completed stories.",
		),
		userKeyOption(),
	)
}

// Handle processes the list_goals tool call.
func (t *ListGoalsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goals, err := t.store.ListGoals(ctx, req.GetString("user_key", ""))
	return respond(goals, err)
}
