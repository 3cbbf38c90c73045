// storygoal: goal and user-story tracker with an MCP server.
//
// Usage:
//
//	storygoal handshake <user_key> [name]
//	storygoal create-goal <user_key> <title> <vision> [success_metrics]
//	storygoal serve    # MCP server on stdio
//
// Run "storygoal --help" for the full command list.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/HendryAvila/storygoal/internal/cli"
)

// Set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Graceful shutdown on interrupt; serve listens on this context.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	stop()
	os.Exit(code)
}
