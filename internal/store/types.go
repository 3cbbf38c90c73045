package store

import (
	"fmt"
	"strings"
)

// ─── Phase ───────────────────────────────────────────────────────────────────

// Phase is the delivery stage a story is currently in.
//
// Transitions are not forced to be sequential: any update may move a story
// to any phase, including backwards for rework. The only rule is that the
// phase is one of the four values below.
type Phase string

const (
	PhaseDefining   Phase = "defining"
	PhaseDeveloping Phase = "developing"
	PhaseValidating Phase = "validating"
	PhaseComplete   Phase = "complete"
)

// phaseOrder lists every phase from initial to terminal.
var phaseOrder = []Phase{PhaseDefining, PhaseDeveloping, PhaseValidating, PhaseComplete}

// Phases returns all phases in delivery order.
func Phases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// PhaseNames returns the phase values as plain strings, in order.
func PhaseNames() []string {
	names := make([]string, len(phaseOrder))
	for i, p := range phaseOrder {
		names[i] = string(p)
	}
	return names
}

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseDefining, PhaseDeveloping, PhaseValidating, PhaseComplete:
		return true
	}
	return false
}

// Terminal reports whether p is the final phase.
func (p Phase) Terminal() bool {
	return p == PhaseComplete
}

// ParsePhase converts s into a Phase. Matching is exact and case-sensitive.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.Valid() {
		return "", invalidInput(fmt.Sprintf("invalid phase %q: must be one of: %s", s, strings.Join(PhaseNames(), ", ")))
	}
	return p, nil
}

// ─── Records ─────────────────────────────────────────────────────────────────

// Registration is the bookkeeping row for a workspace key.
type Registration struct {
	UserKey   string `json:"user_key" yaml:"user_key"`
	Name      string `json:"name" yaml:"name"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

// WorkspaceSummary is returned by the handshake.
type WorkspaceSummary struct {
	UserKey       string `json:"user_key" yaml:"user_key"`
	Name          string `json:"name" yaml:"name"`
	Goals         int    `json:"goals" yaml:"goals"`
	Stories       int    `json:"stories" yaml:"stories"`
	ActiveStories int    `json:"active_stories" yaml:"active_stories"`
	CreatedAt     string `json:"created_at" yaml:"created_at"`
	HandshakeTime string `json:"handshake_time" yaml:"handshake_time"`
}

// Goal is a desired outcome. TotalStories and CompletedStories are computed
// when the goal is read and are never stored.
type Goal struct {
	ID               string `json:"id" yaml:"id"`
	Title            string `json:"title" yaml:"title"`
	Vision           string `json:"vision" yaml:"vision"`
	SuccessMetrics   string `json:"success_metrics" yaml:"success_metrics"`
	TotalStories     int    `json:"total_stories" yaml:"total_stories"`
	CompletedStories int    `json:"completed_stories" yaml:"completed_stories"`
	CreatedAt        string `json:"created_at" yaml:"created_at"`
	UpdatedAt        string `json:"updated_at" yaml:"updated_at"`
}

// ProgressNote records one phase transition.
type ProgressNote struct {
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Phase     Phase  `json:"phase" yaml:"phase"`
	Notes     string `json:"notes" yaml:"notes"`
}

// Story is a unit of user-facing work. GoalID is nil for unlinked stories.
type Story struct {
	ID                 string         `json:"id" yaml:"id"`
	Title              string         `json:"title" yaml:"title"`
	AsA                string         `json:"as_a" yaml:"as_a"`
	IWant              string         `json:"i_want" yaml:"i_want"`
	SoThat             string         `json:"so_that" yaml:"so_that"`
	CurrentPhase       Phase          `json:"current_phase" yaml:"current_phase"`
	AcceptanceCriteria []string       `json:"acceptance_criteria" yaml:"acceptance_criteria"`
	ProgressNotes      []ProgressNote `json:"progress_notes" yaml:"progress_notes"`
	GoalID             *string        `json:"goal_id" yaml:"goal_id"`
	CreatedAt          string         `json:"created_at" yaml:"created_at"`
	UpdatedAt          string         `json:"updated_at" yaml:"updated_at"`
}

// GoalRef is the goal summary embedded in StoryDetails.
type GoalRef struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Vision string `json:"vision" yaml:"vision"`
}

// StoryDetails is a story together with the goal it references, if any.
type StoryDetails struct {
	Story `yaml:",inline"`
	Goal *GoalRef `json:"goal,omitempty" yaml:"goal,omitempty"`
}

// ─── Params ──────────────────────────────────────────────────────────────────

// CreateGoalParams holds the input for CreateGoal.
type CreateGoalParams struct {
	UserKey        string `json:"user_key"`
	Title          string `json:"title"`
	Vision         string `json:"vision"`
	SuccessMetrics string `json:"success_metrics,omitempty"`
}

// CreateStoryParams holds the input for CreateStory. An empty GoalID
// creates an unlinked story.
type CreateStoryParams struct {
	UserKey string `json:"user_key"`
	Title   string `json:"title"`
	AsA     string `json:"as_a"`
	IWant   string `json:"i_want"`
	SoThat  string `json:"so_that"`
	GoalID  string `json:"goal_id,omitempty"`
}

// StoryFilter narrows ListStories. Empty fields do not restrict.
type StoryFilter struct {
	GoalID string `json:"goal_id,omitempty"`
	Phase  string `json:"phase,omitempty"`
}

// ─── Export ──────────────────────────────────────────────────────────────────

// ExportVersion is written into every export document.
const ExportVersion = "1"

// ExportData is a complete, self-contained dump of one workspace.
type ExportData struct {
	Version    string       `json:"version" yaml:"version"`
	ExportedAt string       `json:"exported_at" yaml:"exported_at"`
	Workspace  Registration `json:"workspace" yaml:"workspace"`
	Goals      []Goal       `json:"goals" yaml:"goals"`
	Stories    []Story      `json:"stories" yaml:"stories"`
}

// ImportResult holds counts of imported records.
type ImportResult struct {
	GoalsImported   int `json:"goals_imported" yaml:"goals_imported"`
	StoriesImported int `json:"stories_imported" yaml:"stories_imported"`
	Skipped         int `json:"skipped" yaml:"skipped"`
}
