package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storygoal/internal/store"
)

// HandshakeTool handles the story_goal_handshake MCP tool.
type HandshakeTool struct {
	store *store.Store
}

// NewHandshakeTool creates a HandshakeTool.
func NewHandshakeTool(s *store.Store) *HandshakeTool {
	return &HandshakeTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *HandshakeTool) Definition() mcp.Tool {
	return mcp.NewTool("story_goal_handshake",
		mcp.WithDescription(
			"Register (or re-open) a workspace and return its summary: name, goal and story "+
				"counts, and how many stories are still active. Call this first in a session.",
		),
		userKeyOption(),
		mcp.WithString("name",
			mcp.Description("Display name for the workspace owner. Omit to keep the current name."),
		),
	)
}

// Handle processes the story_goal_handshake tool call.
func (t *HandshakeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := t.store.EnsureWorkspace(ctx,
		req.GetString("user_key", ""),
		req.GetString("name", ""),
	)
	return respond(summary, err)
}
