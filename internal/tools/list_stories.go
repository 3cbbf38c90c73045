package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storygoal/internal/store"
)

// ListStoriesTool handles the list_stories MCP tool.
type ListStoriesTool struct {
	store *store.Store
}

// NewListStoriesTool creates a ListStoriesTool.
func NewListStoriesTool(s *store.Store) *ListStoriesTool {
	return &ListStoriesTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *ListStoriesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_stories",
		mcp.WithDescription(
			"List stories in creation order. Filters combine: goal_id and phase together "+
				"return only stories matching both.",
		),
		userKeyOption(),
		mcp.WithString("goal_id",
			mcp.Description("Only stories linked to this goal."),
		),
		mcp.WithString("phase",
			mcp.Description("Only stories currently in this phase."),
			mcp.Enum(store.PhaseNames()...),
		),
	)
}

// Handle processes the list_stories tool call.
func (t *ListStoriesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stories, err := t.store.ListStories(ctx, req.GetString("user_key", ""), store.StoryFilter{
		GoalID: req.GetString("goal_id", ""),
		Phase:  req.GetString("phase", ""),
	})
	return respond(stories, err)
}
