package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/HendryAvila/storygoal/internal/store"
)

// textStyles holds lipgloss styles for the text output format.
type textStyles struct {
	title  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	dim    lipgloss.Style
	ok     lipgloss.Style
	phases map[store.Phase]lipgloss.AdaptiveColor
}

func newTextStyles() *textStyles {
	return &textStyles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		label: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		ok: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#008700", Dark: "#5FFF87"}),
		phases: map[store.Phase]lipgloss.AdaptiveColor{
			store.PhaseDefining:   {Light: "#585858", Dark: "#A8A8A8"},
			store.PhaseDeveloping: {Light: "#0087AF", Dark: "#00D7FF"},
			store.PhaseValidating: {Light: "#AF8700", Dark: "#FFD75F"},
			store.PhaseComplete:   {Light: "#008700", Dark: "#5FFF87"},
		},
	}
}

// phase renders p padded to the widest phase name.
func (s *textStyles) phase(p store.Phase) string {
	padded := fmt.Sprintf("%-10s", p)
	return lipgloss.NewStyle().Foreground(s.phases[p]).Render(padded)
}

func (s *textStyles) field(label, value string) string {
	return s.label.Render(fmt.Sprintf("%-16s", label+":")) + value
}

// renderText formats the snapshots returned by store operations.
// Unknown values fall back to %+v.
func renderText(v any) string {
	s := newTextStyles()
	switch x := v.(type) {
	case *store.WorkspaceSummary:
		return s.summary(x)
	case *store.Goal:
		return s.goals([]store.Goal{*x})
	case []store.Goal:
		return s.goals(x)
	case *store.Story:
		return s.story(x, nil)
	case []store.Story:
		return s.stories(x)
	case *store.StoryDetails:
		return s.story(&x.Story, x.Goal)
	case *store.ExportData:
		return s.export(x)
	case *store.ImportResult:
		return fmt.Sprintf("imported %d goal(s), %d story(ies); skipped %d existing",
			x.GoalsImported, x.StoriesImported, x.Skipped)
	case *exportWritten:
		return fmt.Sprintf("wrote %d goal(s) and %d story(ies) to %s", x.Goals, x.Stories, x.File)
	case versionInfo:
		return fmt.Sprintf("storygoal %s (commit: %s, built: %s)", x.Version, x.Commit, x.Date)
	default:
		return fmt.Sprintf("%+v", v)
	}
}

func (s *textStyles) summary(w *store.WorkspaceSummary) string {
	lines := []string{
		s.title.Render("Workspace " + w.UserKey),
		s.field("name", w.Name),
		s.field("goals", fmt.Sprint(w.Goals)),
		s.field("stories", fmt.Sprintf("%d (%d active)", w.Stories, w.ActiveStories)),
		s.field("registered", w.CreatedAt),
	}
	return strings.Join(lines, "\n")
}

func (s *textStyles) goals(goals []store.Goal) string {
	if len(goals) == 0 {
		return s.dim.Render("No goals yet. Run 'storygoal create-goal' to add one.")
	}
	lines := []string{s.header.Render(fmt.Sprintf("%-10s %-9s %s", "ID", "DONE", "TITLE"))}
	for _, g := range goals {
		done := fmt.Sprintf("%d/%d", g.CompletedStories, g.TotalStories)
		if g.TotalStories > 0 && g.CompletedStories == g.TotalStories {
			done = s.ok.Render(fmt.Sprintf("%-9s", done))
		} else {
			done = fmt.Sprintf("%-9s", done)
		}
		lines = append(lines, fmt.Sprintf("%-10s %s %s", g.ID, done, g.Title))
		lines = append(lines, s.dim.Render("           "+g.Vision))
	}
	return strings.Join(lines, "\n")
}

func (s *textStyles) stories(stories []store.Story) string {
	if len(stories) == 0 {
		return s.dim.Render("No stories match.")
	}
	lines := []string{s.header.Render(fmt.Sprintf("%-10s %-10s %-10s %s", "ID", "PHASE", "GOAL", "TITLE"))}
	for _, st := range stories {
		goal := "-"
		if st.GoalID != nil {
			goal = *st.GoalID
		}
		lines = append(lines, fmt.Sprintf("%-10s %s %-10s %s", st.ID, s.phase(st.CurrentPhase), goal, st.Title))
	}
	return strings.Join(lines, "\n")
}

func (s *textStyles) story(st *store.Story, goal *store.GoalRef) string {
	lines := []string{
		s.title.Render(st.Title) + "  " + s.dim.Render(st.ID),
		s.field("phase", s.phase(st.CurrentPhase)),
		s.field("as a", st.AsA),
		s.field("i want", st.IWant),
		s.field("so that", st.SoThat),
	}
	switch {
	case goal != nil:
		lines = append(lines, s.field("goal", fmt.Sprintf("%s (%s)", goal.Title, goal.ID)))
	case st.GoalID != nil:
		lines = append(lines, s.field("goal", *st.GoalID))
	}

	if len(st.AcceptanceCriteria) > 0 {
		lines = append(lines, "", s.header.Render("Acceptance criteria"))
		for i, c := range st.AcceptanceCriteria {
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, c))
		}
	}
	if len(st.ProgressNotes) > 0 {
		lines = append(lines, "", s.header.Render("Progress"))
		for _, n := range st.ProgressNotes {
			lines = append(lines, fmt.Sprintf("  %s  %s %s", s.dim.Render(n.Timestamp), s.phase(n.Phase), n.Notes))
		}
	}
	return strings.Join(lines, "\n")
}

func (s *textStyles) export(d *store.ExportData) string {
	return strings.Join([]string{
		s.title.Render("Export of " + d.Workspace.UserKey),
		s.field("exported at", d.ExportedAt),
		"",
		s.goals(d.Goals),
		"",
		s.stories(d.Stories),
	}, "\n")
}
