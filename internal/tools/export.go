package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storygoal/internal/store"
)

// ExportTool handles the export_workspace MCP tool.
type ExportTool struct {
	store *store.Store
}

// NewExportTool creates an ExportTool.
func NewExportTool(s *store.Store) *ExportTool {
	return &ExportTool{store: s}
}

// Definition returns the MCP tool definition for registration.
func (t *ExportTool) Definition() mcp.Tool {
	return mcp.NewTool("export_workspace",
		mcp.WithDescription(
			"Dump a whole workspace (registration, goals, stories with their history) "+
				"as one JSON document. The workspace must already exist.",
		),
		userKeyOption(),
	)
}

// Handle processes the export_workspace tool call.
func (t *ExportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := t.store.Export(ctx, req.GetString("user_key", ""))
	return respond(data, err)
}
