package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storygoal/internal/store"
)

// CreateStoryTool handles the create_story MCP tool.
type CreateStoryTool struct {
	store *store.Store
}

// NewCreateStoryTool creates a CreateStoryTool.
func NewCreateStoryTool(s *store.Store) *CreateStoryTool {
	return &CreateStoryTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateStoryTool) Definition() mcp.Tool {
	return mcp.NewTool("create_story",
		mcp.WithDescription(
			"Create a user story ('As a ... I want ... so that ...'). New stories start in the "+
				"'defining' phase with no acceptance criteria and no progress notes. "+
				"Pass goal_id to link the story to a goal in the same workspace.",
		),
		userKeyOption(),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short name for the story."),
		),
		mcp.WithString("as_a",
			mcp.Required(),
			mcp.Description("Who benefits. Example: 'blog reader'"),
		),
		mcp.WithString("i_want",
			mcp.Required(),
			mcp.Description("What they want to do."),
		),
		mcp.WithString("so_that",
			mcp.Required(),
			mcp.Description("Why it matters to them."),
		),
		mcp.WithString("goal_id",
			mcp.Description("Id of the goal this story serves. Must belong to the same workspace."),
		),
	)
}

// Handle processes the create_story tool call.
func (t *CreateStoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	story, err := t.store.CreateStory(ctx, store.CreateStoryParams{
		UserKey: req.GetString("user_key", ""),
		Title:   req.GetString("title", ""),
		AsA:     req.GetString("as_a", ""),
		IWant:   req.GetString("i_want", ""),
		SoThat:  req.GetString("so_that", ""),
		GoalID:  req.GetString("goal_id", ""),
	})
	return respond(story, err)
}
