// Package prompts implements the MCP prompts for the story/goal tracker.
//
// Prompts are user-triggered workflows (like slash commands) that tell
// the assistant which tools to call and in what order. Unlike tools,
// they never touch the store themselves.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storygoal/internal/store"
)

// StartPrompt handles the story-goal-start MCP prompt.
// It walks the assistant through the handshake and the first goal.
type StartPrompt struct{}

// NewStartPrompt creates a StartPrompt.
func NewStartPrompt() *StartPrompt {
	return &StartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("story-goal-start",
		mcp.WithPromptDescription(
			"Open a story/goal workspace and plan the outcomes you are working towards. "+
				"The assistant registers the workspace, captures goals, then breaks them into stories.",
		),
		mcp.WithArgument("user_key",
			mcp.ArgumentDescription("Workspace key to open. Reuse it in later sessions."),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("name",
			mcp.ArgumentDescription("Your display name (optional)."),
		),
	)
}

// Handle processes the story-goal-start prompt request.
func (p *StartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	userKey := argument(req, "user_key", "")
	if userKey == "" {
		return nil, fmt.Errorf("'user_key' is required")
	}
	name := argument(req, "name", "")

	handshake := fmt.Sprintf("`story_goal_handshake` with user_key=%q", userKey)
	if name != "" {
		handshake += fmt.Sprintf(" and name=%q", name)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Start story/goal planning for %s", userKey),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to plan my work as goals and user stories.\n\n"+
						"Please:\n"+
						"1. Run %s and tell me what is already in the workspace\n"+
						"2. If I have no goals yet, ask me what outcomes I am after, then call `create_goal` "+
						"once per outcome with a title, a vision, and (if I give one) a success metric\n"+
						"3. For each goal, help me write stories in the form 'As a ... I want ... so that ...' "+
						"and save them with `create_story`, passing the goal's id as goal_id\n"+
						"4. Add testable acceptance criteria with `add_acceptance_criteria`\n"+
						"5. As work moves forward, record it with `update_story_progress` "+
						"(phases: %s)\n\n"+
						"Always use user_key=%q.",
					handshake, strings.Join(store.PhaseNames(), " → "), userKey,
				)),
			},
		},
	}, nil
}

// argument returns a prompt argument, or def when it is missing or blank.
func argument(req mcp.GetPromptRequest, key, def string) string {
	if v := strings.TrimSpace(req.Params.Arguments[key]); v != "" {
		return v
	}
	return def
}
