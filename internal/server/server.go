// Package server wires the MCP components and creates the server instance.
//
// This is the composition root: it takes an open store and injects it into
// the tools and resources that depend on it. No business logic lives here,
// only wiring.
package server

import (
	"context"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/HendryAvila/storygoal/internal/prompts"
	"github.com/HendryAvila/storygoal/internal/resources"
	"github.com/HendryAvila/storygoal/internal/store"
	"github.com/HendryAvila/storygoal/internal/tools"
)

// Name is reported to MCP clients during initialization.
const Name = "storygoal"

// Version is set at build time via ldflags.
var Version = "dev"

// toolHandler is implemented by every type in internal/tools.
type toolHandler interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New creates the MCP server with all tools, prompts and resources
// registered against st. The caller owns st and closes it after the
// server stops.
func New(st *store.Store, log zerolog.Logger) *server.MCPServer {
	log = log.With().Str("component", "mcp").Logger()

	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	for _, t := range []toolHandler{
		tools.NewHandshakeTool(st),
		tools.NewCreateGoalTool(st),
		tools.NewListGoalsTool(st),
		tools.NewCreateStoryTool(st),
		tools.NewUpdateStoryProgressTool(st),
		tools.NewListStoriesTool(st),
		tools.NewStoryDetailsTool(st),
		tools.NewAcceptanceCriteriaTool(st),
		tools.NewExportTool(st),
	} {
		s.AddTool(t.Definition(), logged(log, t))
	}

	// --- Register prompts ---

	startPrompt := prompts.NewStartPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(st)
	s.AddResourceTemplate(resourceHandler.SummaryTemplate(), resourceHandler.HandleSummary)

	return s
}

// logged wraps a tool handler with a debug line per call. Arguments are
// not logged; they may hold user text.
func logged(log zerolog.Logger, t toolHandler) server.ToolHandlerFunc {
	name := t.Definition().Name
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := t.Handle(ctx, req)
		var ev *zerolog.Event
		switch {
		case err != nil:
			ev = log.Error().Err(err)
		case res != nil && res.IsError:
			ev = log.Debug().Bool("tool_error", true)
		default:
			ev = log.Debug()
		}
		ev.Str("tool", name).Msg("tool call")
		return res, err
	}
}

// ServeStdio runs s over the given streams until ctx is cancelled or
// the input is closed.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer, log zerolog.Logger) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(stdLogger(log))

	log.Info().Str("version", Version).Msg("mcp server listening on stdio")
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	log.Info().Msg("mcp server stopped")
	return nil
}
