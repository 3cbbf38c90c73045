package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storygoal/internal/store"
)

// StoryDetailsTool handles the get_story_details MCP tool.
type StoryDetailsTool struct {
	store *store.Store
}

// NewStoryDetailsTool creates a StoryDetailsTool.
func NewStoryDetailsTool(s *store.Store) *StoryDetailsTool {
	return &StoryDetailsTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *StoryDetailsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_story_details",
		mcp.WithDescription(
			"Fetch one story with its acceptance criteria, full progress history, "+
				"and a summary of the goal it is linked to.",
		),
		userKeyOption(),
		mcp.WithString("story_id",
			mcp.Required(),
			mcp.Description("Id of the story."),
		),
	)
}

// Handle processes the get_story_details tool call.
func (t *StoryDetailsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	details, err := t.store.GetStoryDetails(ctx,
		req.GetString("user_key", ""),
		req.GetString("story_id", ""),
	)
	return respond(details, err)
}
