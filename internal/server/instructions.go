package server

import (
	"log"
	"strings"

	"github.com/rs/zerolog"

	"github.com/HendryAvila/storygoal/internal/store"
)

// stdLogger adapts zerolog for mcp-go's stdio error logger, which takes a
// *log.Logger.
func stdLogger(l zerolog.Logger) *log.Logger {
	return log.New(l.With().Str("source", "stdio").Logger(), "", 0)
}

// serverInstructions tells the assistant how to use the tracker.
func serverInstructions() string {
	return `You have access to storygoal, a goal and user-story tracker.

## Workspaces
Every call takes a user_key. All goals and stories live inside the workspace
named by that key and are invisible from any other key. Use the same key for
the whole conversation. Start with story_goal_handshake: it registers the
workspace if needed and reports what is already there.

## Goals
A goal is an outcome (title, vision, optional success metrics). create_goal
returns its id. list_goals shows every goal, oldest first, with the number of
linked stories and how many of them are complete.

## Stories
A story is "As a <as_a>, I want <i_want>, so that <so_that>". create_story
optionally links it to a goal via goal_id; the goal must be in the same
workspace. New stories start in 'defining'.

Phases: ` + strings.Join(store.PhaseNames(), " → ") + `

update_story_progress sets the phase and appends a note. Notes are a
permanent history: they are never edited or removed. add_acceptance_criteria
appends testable criteria. get_story_details returns a story with its history
and goal. list_stories filters by goal_id and/or phase.

## Errors
Failed calls return {"error":{"kind":...,"message":...}}. Kinds:
InvalidInput (missing field or unknown phase), ReferenceNotFound (goal_id not
in this workspace), NotFound (no such story), WorkspaceNotFound (export of a
key that was never used), StorageFailure.

## Rules
- NEVER invent ids; use the ids returned by earlier calls.
- There is no delete. Do not promise to remove goals or stories.
- Write real content. Do not save placeholders like "TBD".`
}
