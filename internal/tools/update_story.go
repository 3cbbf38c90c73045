package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storygoal/internal/store"
)

// UpdateStoryProgressTool handles the update_story_progress MCP tool.
type UpdateStoryProgressTool struct {
	store *store.Store
}

// NewUpdateStoryProgressTool creates an UpdateStoryProgressTool.
func NewUpdateStoryProgressTool(s *store.Store) *UpdateStoryProgressTool {
	return &UpdateStoryProgressTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateStoryProgressTool) Definition() mcp.Tool {
	return mcp.NewTool("update_story_progress",
		mcp.WithDescription(
			"Move a story to a phase and append a progress note. Notes are never edited or "+
				"removed; the story's current phase is always the phase of the latest call. "+
				"Phases: "+strings.Join(store.PhaseNames(), " → ")+".",
		),
		userKeyOption(),
		mcp.WithString("story_id",
			mcp.Required(),
			mcp.Description("Id of the story to update."),
		),
		mcp.WithString("phase",
			mcp.Required(),
			mcp.Description("New phase for the story."),
			mcp.Enum(store.PhaseNames()...),
		),
		mcp.WithString("notes",
			mcp.Description("What happened. May be empty."),
		),
	)
}

// Handle processes the update_story_progress tool call.
func (t *UpdateStoryProgressTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	story, err := t.store.UpdateStoryProgress(ctx,
		req.GetString("user_key", ""),
		req.GetString("story_id", ""),
		req.GetString("phase", ""),
		req.GetString("notes", ""),
	)
	return respond(story, err)
}
