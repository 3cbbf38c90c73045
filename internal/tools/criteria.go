package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storygoal/internal/store"
)

// AcceptanceCriteriaTool handles the add_acceptance_criteria MCP tool.
type AcceptanceCriteriaTool struct {
	store *store.Store
}

// NewAcceptanceCriteriaTool creates an AcceptanceCriteriaTool.
func NewAcceptanceCriteriaTool(s *store.Store) *AcceptanceCriteriaTool {
	return &AcceptanceCriteriaTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *AcceptanceCriteriaTool) Definition() mcp.Tool {
	return mcp.NewTool("add_acceptance_criteria",
		mcp.WithDescription(
			"Append acceptance criteria to a story. Existing criteria are kept; "+
				"new ones are added after them in the order given.",
		),
		userKeyOption(),
		mcp.WithString("story_id",
			mcp.Required(),
			mcp.Description("Id of the story."),
		),
		mcp.WithString("criteria",
			mcp.Required(),
			mcp.Description("Criteria to add, one per line. A JSON array of strings is also accepted."),
		),
	)
}

// Handle processes the add_acceptance_criteria tool call.
func (t *AcceptanceCriteriaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	story, err := t.store.AddAcceptanceCriteria(ctx,
		req.GetString("user_key", ""),
		req.GetString("story_id", ""),
		stringsArg(req, "criteria"),
	)
	return respond(story, err)
}
