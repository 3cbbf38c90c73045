package store_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/HendryAvila/storygoal/internal/store"
)

// newTestStore creates a Store backed by a temp directory for isolation.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustGoal(t *testing.T, s *store.Store, key, title string) *store.Goal {
	t.Helper()
	g, err := s.CreateGoal(context.Background(), store.CreateGoalParams{
		UserKey: key,
		Title:   title,
		Vision:  "vision for " + title,
	})
	if err != nil {
		t.Fatalf("CreateGoal(%q): %v", title, err)
	}
	return g
}

func mustStory(t *testing.T, s *store.Store, key, title, goalID string) *store.Story {
	t.Helper()
	st, err := s.CreateStory(context.Background(), store.CreateStoryParams{
		UserKey: key,
		Title:   title,
		AsA:     "As a visitor",
		IWant:   "to " + title,
		SoThat:  "I get value",
		GoalID:  goalID,
	})
	if err != nil {
		t.Fatalf("CreateStory(%q): %v", title, err)
	}
	return st
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v error, got %v", kind, err)
	}
}

func countRows(t *testing.T, s *store.Store, table string) int {
	t.Helper()
	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// ─── New / Initialization ───────────────────────────────────────────────────

func TestNew_CreatesDBFile(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(store.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer s.Close()

	want := filepath.Join(dir, store.DefaultFileName)
	if s.Path() != want {
		t.Errorf("Path() = %q, want %q", s.Path(), want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestNew_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "custom.db")
	s, err := store.New(store.Config{Path: path})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created at explicit path: %v", err)
	}
}

func TestNew_IdempotentReopen(t *testing.T) {
	cfg := store.Config{DataDir: t.TempDir()}
	ctx := context.Background()

	s1, err := store.New(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	g := mustGoal(t, s1, "u1", "Persisted")
	s1.Close()

	s2, err := store.New(cfg)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()

	goals, err := s2.ListGoals(ctx, "u1")
	if err != nil {
		t.Fatalf("ListGoals after reopen: %v", err)
	}
	if len(goals) != 1 || goals[0].ID != g.ID {
		t.Errorf("goals after reopen = %+v, want one goal %q", goals, g.ID)
	}
}

// ─── Phase ──────────────────────────────────────────────────────────────────

func TestParsePhase(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"defining", "defining", false},
		{"developing", "developing", false},
		{"validating", "validating", false},
		{"complete", "complete", false},
		{"empty", "", true},
		{"unknown", "done", true},
		{"case sensitive", "Complete", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := store.ParsePhase(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePhase(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				wantKind(t, err, store.ErrInvalidInput)
				return
			}
			if string(p) != tt.input {
				t.Errorf("ParsePhase(%q) = %q", tt.input, p)
			}
		})
	}
}

func TestPhases_Order(t *testing.T) {
	got := store.Phases()
	want := []store.Phase{store.PhaseDefining, store.PhaseDeveloping, store.PhaseValidating, store.PhaseComplete}
	if len(got) != len(want) {
		t.Fatalf("Phases() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Phases()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if !store.PhaseComplete.Terminal() || store.PhaseValidating.Terminal() {
		t.Error("only complete should be terminal")
	}
}

// ─── Workspace ──────────────────────────────────────────────────────────────

func TestEnsureWorkspace_RegistersNew(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sum, err := s.EnsureWorkspace(ctx, "u1", "Ada")
	if err != nil {
		t.Fatalf("EnsureWorkspace: %v", err)
	}
	if sum.UserKey != "u1" || sum.Name != "Ada" {
		t.Errorf("summary = %+v, want u1/Ada", sum)
	}
	if sum.Goals != 0 || sum.Stories != 0 || sum.ActiveStories != 0 {
		t.Errorf("new workspace counts = %d/%d/%d, want zeros", sum.Goals, sum.Stories, sum.ActiveStories)
	}
	if sum.CreatedAt == "" || sum.HandshakeTime == "" {
		t.Error("timestamps should be set")
	}
}

func TestEnsureWorkspace_PlaceholderName(t *testing.T) {
	s := newTestStore(t)

	sum, err := s.EnsureWorkspace(context.Background(), "anon", "")
	if err != nil {
		t.Fatalf("EnsureWorkspace: %v", err)
	}
	if sum.Name != "Unknown" {
		t.Errorf("Name = %q, want placeholder %q", sum.Name, "Unknown")
	}
}

func TestEnsureWorkspace_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.EnsureWorkspace(ctx, "u1", "Ada")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.EnsureWorkspace(ctx, "u1", "")
	if err != nil {
		t.Fatal(err)
	}
	if second.Name != "Ada" {
		t.Errorf("Name after nameless handshake = %q, want %q", second.Name, "Ada")
	}
	if second.CreatedAt != first.CreatedAt {
		t.Errorf("CreatedAt changed: %q -> %q", first.CreatedAt, second.CreatedAt)
	}
	if n := countRows(t, s, "users"); n != 1 {
		t.Errorf("users rows = %d, want 1", n)
	}
}

func TestEnsureWorkspace_RenameLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.EnsureWorkspace(ctx, "u1", "Ada"); err != nil {
		t.Fatal(err)
	}
	sum, err := s.EnsureWorkspace(ctx, "u1", "Grace")
	if err != nil {
		t.Fatal(err)
	}
	if sum.Name != "Grace" {
		t.Errorf("Name = %q, want %q", sum.Name, "Grace")
	}
}

func TestEnsureWorkspace_EmptyKey(t *testing.T) {
	s := newTestStore(t)

	_, err := s.EnsureWorkspace(context.Background(), "", "Ada")
	wantKind(t, err, store.ErrInvalidInput)

	_, err = s.EnsureWorkspace(context.Background(), "   ", "Ada")
	wantKind(t, err, store.ErrInvalidInput)
}

func TestEnsureWorkspace_Counts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := mustGoal(t, s, "u1", "Blog")
	mustStory(t, s, "u1", "a", g.ID)
	done := mustStory(t, s, "u1", "b", g.ID)
	mustStory(t, s, "u1", "c", "")
	if _, err := s.UpdateStoryProgress(ctx, "u1", done.ID, "complete", "shipped"); err != nil {
		t.Fatal(err)
	}

	sum, err := s.EnsureWorkspace(ctx, "u1", "")
	if err != nil {
		t.Fatal(err)
	}
	if sum.Goals != 1 || sum.Stories != 3 || sum.ActiveStories != 2 {
		t.Errorf("counts = goals %d stories %d active %d, want 1/3/2", sum.Goals, sum.Stories, sum.ActiveStories)
	}
}

func TestSummary_DoesNotRegister(t *testing.T) {
	s := newTestStore(t)

	sum, err := s.Summary(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Goals != 0 || sum.Name != "" {
		t.Errorf("summary for unknown key = %+v", sum)
	}
	if n := countRows(t, s, "users"); n != 0 {
		t.Errorf("Summary registered a workspace: users rows = %d", n)
	}
}

// ─── Goals ──────────────────────────────────────────────────────────────────

func TestCreateGoal_Basic(t *testing.T) {
	s := newTestStore(t)

	g, err := s.CreateGoal(context.Background(), store.CreateGoalParams{
		UserKey:        "u1",
		Title:          "Build Blog",
		Vision:         "Share articles",
		SuccessMetrics: "5 posts live",
	})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if len(g.ID) != 8 {
		t.Errorf("ID = %q, want 8 characters", g.ID)
	}
	if g.Title != "Build Blog" || g.Vision != "Share articles" || g.SuccessMetrics != "5 posts live" {
		t.Errorf("goal fields = %+v", g)
	}
	if g.TotalStories != 0 || g.CompletedStories != 0 {
		t.Errorf("counts = %d/%d, want 0/0", g.TotalStories, g.CompletedStories)
	}
	if g.CreatedAt == "" {
		t.Error("CreatedAt should be set")
	}
}

func TestCreateGoal_AutoRegistersWorkspace(t *testing.T) {
	s := newTestStore(t)
	mustGoal(t, s, "fresh", "First")

	sum, err := s.EnsureWorkspace(context.Background(), "fresh", "")
	if err != nil {
		t.Fatal(err)
	}
	if sum.Name != "Unknown" || sum.Goals != 1 {
		t.Errorf("auto-registered summary = %+v", sum)
	}
}

func TestCreateGoal_SuccessMetricsOptional(t *testing.T) {
	s := newTestStore(t)
	g := mustGoal(t, s, "u1", "No metrics")
	if g.SuccessMetrics != "" {
		t.Errorf("SuccessMetrics = %q, want empty", g.SuccessMetrics)
	}
}

func TestCreateGoal_RequiredFields(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		name string
		p    store.CreateGoalParams
	}{
		{"missing user_key", store.CreateGoalParams{Title: "t", Vision: "v"}},
		{"missing title", store.CreateGoalParams{UserKey: "u", Vision: "v"}},
		{"missing vision", store.CreateGoalParams{UserKey: "u", Title: "t"}},
		{"blank title", store.CreateGoalParams{UserKey: "u", Title: "  ", Vision: "v"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateGoal(context.Background(), tt.p)
			wantKind(t, err, store.ErrInvalidInput)
		})
	}
	if n := countRows(t, s, "goals"); n != 0 {
		t.Errorf("goals rows = %d after failed creates, want 0", n)
	}
}

func TestListGoals_UnknownWorkspace(t *testing.T) {
	s := newTestStore(t)

	goals, err := s.ListGoals(context.Background(), "unknown-key")
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if goals == nil || len(goals) != 0 {
		t.Errorf("goals = %#v, want empty non-nil slice", goals)
	}
}

func TestListGoals_CreationOrder(t *testing.T) {
	s := newTestStore(t)
	var ids []string
	for i := range 5 {
		ids = append(ids, mustGoal(t, s, "u1", fmt.Sprintf("goal-%d", i)).ID)
	}

	goals, err := s.ListGoals(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != len(ids) {
		t.Fatalf("len = %d, want %d", len(goals), len(ids))
	}
	for i, g := range goals {
		if g.ID != ids[i] {
			t.Errorf("goals[%d] = %q, want %q", i, g.ID, ids[i])
		}
	}
}

func TestListGoals_EqualTimestampsKeepCreationOrder(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	defer store.SetClock(func() time.Time { return fixed })()

	s := newTestStore(t)
	a := mustGoal(t, s, "u1", "a")
	b := mustGoal(t, s, "u1", "b")
	c := mustGoal(t, s, "u1", "c")

	goals, err := s.ListGoals(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	got := []string{goals[0].ID, goals[1].ID, goals[2].ID}
	want := []string{a.ID, b.ID, c.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestListGoals_StoryCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := mustGoal(t, s, "u1", "Blog")
	other := mustGoal(t, s, "u1", "Other")
	var stories []*store.Story
	for i := range 4 {
		stories = append(stories, mustStory(t, s, "u1", fmt.Sprintf("s%d", i), g.ID))
	}
	mustStory(t, s, "u1", "unlinked", "")
	mustStory(t, s, "u1", "elsewhere", other.ID)

	for _, st := range stories[:2] {
		if _, err := s.UpdateStoryProgress(ctx, "u1", st.ID, "complete", "done"); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.UpdateStoryProgress(ctx, "u1", stories[2].ID, "validating", ""); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetGoal(ctx, "u1", g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalStories != 4 || got.CompletedStories != 2 {
		t.Errorf("counts = %d/%d, want 4/2", got.TotalStories, got.CompletedStories)
	}

	goals, err := s.ListGoals(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if goals[1].ID != other.ID || goals[1].TotalStories != 1 || goals[1].CompletedStories != 0 {
		t.Errorf("other goal = %+v, want 1/0", goals[1])
	}
}

func TestGetGoal_NotFound(t *testing.T) {
	s := newTestStore(t)
	g := mustGoal(t, s, "u1", "mine")

	_, err := s.GetGoal(context.Background(), "u1", "deadbeef")
	wantKind(t, err, store.ErrNotFound)

	_, err = s.GetGoal(context.Background(), "u2", g.ID)
	wantKind(t, err, store.ErrNotFound)
}

// ─── Stories ────────────────────────────────────────────────────────────────

func TestCreateStory_Defaults(t *testing.T) {
	s := newTestStore(t)
	g := mustGoal(t, s, "u1", "Blog")

	st := mustStory(t, s, "u1", "Homepage", g.ID)
	if st.CurrentPhase != store.PhaseDefining {
		t.Errorf("CurrentPhase = %q, want defining", st.CurrentPhase)
	}
	if st.AcceptanceCriteria == nil || len(st.AcceptanceCriteria) != 0 {
		t.Errorf("AcceptanceCriteria = %#v, want empty", st.AcceptanceCriteria)
	}
	if st.ProgressNotes == nil || len(st.ProgressNotes) != 0 {
		t.Errorf("ProgressNotes = %#v, want empty", st.ProgressNotes)
	}
	if st.GoalID == nil || *st.GoalID != g.ID {
		t.Errorf("GoalID = %v, want %q", st.GoalID, g.ID)
	}
	if st.ID == g.ID {
		t.Error("story and goal ids collided")
	}
}

func TestCreateStory_Unlinked(t *testing.T) {
	s := newTestStore(t)
	st := mustStory(t, s, "u1", "Loose", "")
	if st.GoalID != nil {
		t.Errorf("GoalID = %q, want nil", *st.GoalID)
	}
}

func TestCreateStory_RequiredFields(t *testing.T) {
	s := newTestStore(t)
	base := store.CreateStoryParams{UserKey: "u", Title: "t", AsA: "a", IWant: "w", SoThat: "s"}
	tests := []struct {
		name   string
		mutate func(p *store.CreateStoryParams)
	}{
		{"missing user_key", func(p *store.CreateStoryParams) { p.UserKey = "" }},
		{"missing title", func(p *store.CreateStoryParams) { p.Title = "" }},
		{"missing as_a", func(p *store.CreateStoryParams) { p.AsA = "" }},
		{"missing i_want", func(p *store.CreateStoryParams) { p.IWant = "" }},
		{"missing so_that", func(p *store.CreateStoryParams) { p.SoThat = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := s.CreateStory(context.Background(), p)
			wantKind(t, err, store.ErrInvalidInput)
		})
	}
}

func TestCreateStory_DanglingGoal(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateStory(context.Background(), store.CreateStoryParams{
		UserKey: "u1", Title: "t", AsA: "a", IWant: "w", SoThat: "s", GoalID: "nope0000",
	})
	wantKind(t, err, store.ErrReferenceNotFound)
	if n := countRows(t, s, "stories"); n != 0 {
		t.Errorf("stories rows = %d, want 0", n)
	}
}

func TestCreateStory_CrossWorkspaceGoal(t *testing.T) {
	s := newTestStore(t)
	foreign := mustGoal(t, s, "alice", "Alice goal")

	_, err := s.CreateStory(context.Background(), store.CreateStoryParams{
		UserKey: "bob", Title: "t", AsA: "a", IWant: "w", SoThat: "s", GoalID: foreign.ID,
	})
	wantKind(t, err, store.ErrReferenceNotFound)
	if n := countRows(t, s, "stories"); n != 0 {
		t.Errorf("stories rows = %d after cross-workspace reference, want 0", n)
	}
}

func TestUpdateStoryProgress_AppendOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	st := mustStory(t, s, "u1", "Homepage", "")

	calls := []struct{ phase, notes string }{
		{"developing", "started"},
		{"validating", "in review"},
		{"developing", "rework after review"},
		{"validating", "second review"},
		{"complete", "shipped"},
	}
	for i, c := range calls {
		updated, err := s.UpdateStoryProgress(ctx, "u1", st.ID, c.phase, c.notes)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(updated.ProgressNotes) != i+1 {
			t.Fatalf("after call %d notes = %d, want %d", i, len(updated.ProgressNotes), i+1)
		}
	}

	details, err := s.GetStoryDetails(ctx, "u1", st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if details.CurrentPhase != store.PhaseComplete {
		t.Errorf("CurrentPhase = %q, want complete", details.CurrentPhase)
	}
	if len(details.ProgressNotes) != len(calls) {
		t.Fatalf("notes = %d, want %d", len(details.ProgressNotes), len(calls))
	}
	for i, c := range calls {
		n := details.ProgressNotes[i]
		if string(n.Phase) != c.phase || n.Notes != c.notes {
			t.Errorf("note[%d] = %+v, want %s/%s", i, n, c.phase, c.notes)
		}
		if n.Timestamp == "" {
			t.Errorf("note[%d] missing timestamp", i)
		}
		if i > 0 && n.Timestamp < details.ProgressNotes[i-1].Timestamp {
			t.Errorf("note[%d] timestamp %q before previous %q", i, n.Timestamp, details.ProgressNotes[i-1].Timestamp)
		}
	}
}

func TestUpdateStoryProgress_EmptyNotesAllowed(t *testing.T) {
	s := newTestStore(t)
	st := mustStory(t, s, "u1", "x", "")

	updated, err := s.UpdateStoryProgress(context.Background(), "u1", st.ID, "developing", "")
	if err != nil {
		t.Fatalf("UpdateStoryProgress: %v", err)
	}
	if updated.ProgressNotes[0].Notes != "" {
		t.Errorf("notes = %q, want empty", updated.ProgressNotes[0].Notes)
	}
}

func TestUpdateStoryProgress_InvalidPhase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	st := mustStory(t, s, "u1", "x", "")

	_, err := s.UpdateStoryProgress(ctx, "u1", st.ID, "shipped", "nope")
	wantKind(t, err, store.ErrInvalidInput)

	details, err := s.GetStoryDetails(ctx, "u1", st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if details.CurrentPhase != store.PhaseDefining || len(details.ProgressNotes) != 0 {
		t.Errorf("story changed after invalid update: %+v", details.Story)
	}
}

func TestUpdateStoryProgress_NotFound(t *testing.T) {
	s := newTestStore(t)
	st := mustStory(t, s, "alice", "private", "")

	_, err := s.UpdateStoryProgress(context.Background(), "alice", "missing1", "complete", "")
	wantKind(t, err, store.ErrNotFound)

	_, err = s.UpdateStoryProgress(context.Background(), "bob", st.ID, "complete", "hijack")
	wantKind(t, err, store.ErrNotFound)
}

func TestAddAcceptanceCriteria(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	st := mustStory(t, s, "u1", "x", "")

	if _, err := s.AddAcceptanceCriteria(ctx, "u1", st.ID, []string{"loads in 1s"}); err != nil {
		t.Fatal(err)
	}
	updated, err := s.AddAcceptanceCriteria(ctx, "u1", st.ID, []string{"works offline", "has tests"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"loads in 1s", "works offline", "has tests"}
	if len(updated.AcceptanceCriteria) != len(want) {
		t.Fatalf("criteria = %v, want %v", updated.AcceptanceCriteria, want)
	}
	for i := range want {
		if updated.AcceptanceCriteria[i] != want[i] {
			t.Errorf("criteria[%d] = %q, want %q", i, updated.AcceptanceCriteria[i], want[i])
		}
	}

	_, err = s.AddAcceptanceCriteria(ctx, "u1", st.ID, nil)
	wantKind(t, err, store.ErrInvalidInput)
	_, err = s.AddAcceptanceCriteria(ctx, "u1", st.ID, []string{"ok", " "})
	wantKind(t, err, store.ErrInvalidInput)
	_, err = s.AddAcceptanceCriteria(ctx, "u2", st.ID, []string{"x"})
	wantKind(t, err, store.ErrNotFound)
}

func TestListStories_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g1 := mustGoal(t, s, "u1", "g1")
	g2 := mustGoal(t, s, "u1", "g2")
	a := mustStory(t, s, "u1", "a", g1.ID)
	b := mustStory(t, s, "u1", "b", g1.ID)
	c := mustStory(t, s, "u1", "c", g2.ID)
	d := mustStory(t, s, "u1", "d", "")

	if _, err := s.UpdateStoryProgress(ctx, "u1", b.ID, "developing", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpdateStoryProgress(ctx, "u1", c.ID, "developing", ""); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter store.StoryFilter
		want   []string
	}{
		{"no filter", store.StoryFilter{}, []string{a.ID, b.ID, c.ID, d.ID}},
		{"by goal", store.StoryFilter{GoalID: g1.ID}, []string{a.ID, b.ID}},
		{"by phase", store.StoryFilter{Phase: "developing"}, []string{b.ID, c.ID}},
		{"goal and phase", store.StoryFilter{GoalID: g1.ID, Phase: "developing"}, []string{b.ID}},
		{"no match", store.StoryFilter{GoalID: g2.ID, Phase: "complete"}, []string{}},
		{"unknown goal", store.StoryFilter{GoalID: "zzzzzzzz"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListStories(ctx, "u1", tt.filter)
			if err != nil {
				t.Fatalf("ListStories: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d stories, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("stories[%d] = %q, want %q", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestListStories_UnknownPhaseFilter(t *testing.T) {
	s := newTestStore(t)
	mustStory(t, s, "u1", "a", "")

	for _, phase := range []string{"finished", "Defining", "bogus"} {
		got, err := s.ListStories(context.Background(), "u1", store.StoryFilter{Phase: phase})
		if err != nil {
			t.Fatalf("ListStories(phase=%q): %v", phase, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("ListStories(phase=%q) = %#v, want empty non-nil slice", phase, got)
		}
	}
}

func TestListStories_UnknownWorkspace(t *testing.T) {
	s := newTestStore(t)
	got, err := s.ListStories(context.Background(), "nobody", store.StoryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("stories = %#v, want empty non-nil slice", got)
	}
}

func TestGetStoryDetails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g := mustGoal(t, s, "u1", "Blog")
	linked := mustStory(t, s, "u1", "linked", g.ID)
	loose := mustStory(t, s, "u1", "loose", "")

	d, err := s.GetStoryDetails(ctx, "u1", linked.ID)
	if err != nil {
		t.Fatal(err)
	}
	if d.Goal == nil || d.Goal.ID != g.ID || d.Goal.Title != "Blog" || d.Goal.Vision != g.Vision {
		t.Errorf("embedded goal = %+v, want %q", d.Goal, g.ID)
	}

	d, err = s.GetStoryDetails(ctx, "u1", loose.ID)
	if err != nil {
		t.Fatal(err)
	}
	if d.Goal != nil {
		t.Errorf("unlinked story has goal %+v", d.Goal)
	}

	_, err = s.GetStoryDetails(ctx, "u2", linked.ID)
	wantKind(t, err, store.ErrNotFound)
}

// ─── Isolation ──────────────────────────────────────────────────────────────

func TestWorkspaceIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ga := mustGoal(t, s, "A", "Same title")
	mustGoal(t, s, "B", "Same title")
	mustStory(t, s, "A", "Same story", ga.ID)

	goalsB, err := s.ListGoals(ctx, "B")
	if err != nil {
		t.Fatal(err)
	}
	if len(goalsB) != 1 || goalsB[0].ID == ga.ID {
		t.Errorf("B goals = %+v, leaked A's goal", goalsB)
	}
	if goalsB[0].TotalStories != 0 {
		t.Errorf("B goal counts A's stories: %d", goalsB[0].TotalStories)
	}

	storiesB, err := s.ListStories(ctx, "B", store.StoryFilter{GoalID: ga.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(storiesB) != 0 {
		t.Errorf("B sees %d stories of A", len(storiesB))
	}
}

func TestConcurrentWorkspaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers, perWorker = 4, 10
	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := range workers {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			for i := range perWorker {
				g, err := s.CreateGoal(ctx, store.CreateGoalParams{UserKey: key, Title: fmt.Sprint(i), Vision: "v"})
				if err != nil {
					errs <- err
					return
				}
				if _, err := s.CreateStory(ctx, store.CreateStoryParams{
					UserKey: key, Title: "s", AsA: "a", IWant: "w", SoThat: "x", GoalID: g.ID,
				}); err != nil {
					errs <- err
					return
				}
			}
		}(fmt.Sprintf("ws-%d", w))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent write failed: %v", err)
	}

	for w := range workers {
		goals, err := s.ListGoals(ctx, fmt.Sprintf("ws-%d", w))
		if err != nil {
			t.Fatal(err)
		}
		if len(goals) != perWorker {
			t.Errorf("ws-%d goals = %d, want %d", w, len(goals), perWorker)
		}
		for _, g := range goals {
			if g.TotalStories != 1 {
				t.Errorf("ws-%d goal %s stories = %d, want 1", w, g.ID, g.TotalStories)
			}
		}
	}
}

// ─── Identity ───────────────────────────────────────────────────────────────

func TestIDCollisionRetry(t *testing.T) {
	s := newTestStore(t)

	seq := []string{"aaaaaaaa", "aaaaaaaa", "aaaaaaaa", "bbbbbbbb"}
	var i int
	defer store.SetRandomID(func() string {
		id := seq[i%len(seq)]
		i++
		return id
	})()

	g := mustGoal(t, s, "u1", "first")
	if g.ID != "aaaaaaaa" {
		t.Fatalf("first id = %q", g.ID)
	}
	st := mustStory(t, s, "u2", "second", "")
	if st.ID != "bbbbbbbb" {
		t.Errorf("story id = %q, want retry to reach %q", st.ID, "bbbbbbbb")
	}
}

func TestIDExhaustion(t *testing.T) {
	s := newTestStore(t)
	defer store.SetRandomID(func() string { return "cccccccc" })()

	mustGoal(t, s, "u1", "only")
	_, err := s.CreateGoal(context.Background(), store.CreateGoalParams{UserKey: "u1", Title: "t", Vision: "v"})
	wantKind(t, err, store.ErrStorageFailure)
	if n := countRows(t, s, "goals"); n != 1 {
		t.Errorf("goals rows = %d, want 1", n)
	}
}

// ─── Atomicity ──────────────────────────────────────────────────────────────

func TestCommitFailure_NoPartialWrite(t *testing.T) {
	s := newTestStore(t)
	boom := errors.New("disk full")
	s.SetCommitHook(func(tx *sql.Tx) error {
		_ = tx.Rollback()
		return boom
	})

	_, err := s.CreateGoal(context.Background(), store.CreateGoalParams{UserKey: "u1", Title: "t", Vision: "v"})
	wantKind(t, err, store.ErrStorageFailure)
	if !errors.Is(err, boom) {
		t.Errorf("cause not preserved: %v", err)
	}
	if store.KindOf(err) != "StorageFailure" {
		t.Errorf("KindOf = %q", store.KindOf(err))
	}

	if n := countRows(t, s, "goals"); n != 0 {
		t.Errorf("goals rows = %d, want 0", n)
	}
	if n := countRows(t, s, "users"); n != 0 {
		t.Errorf("users rows = %d, auto-registration leaked", n)
	}
}

func TestKindOf(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetStoryDetails(context.Background(), "u1", "missing")
	if got := store.KindOf(err); got != "NotFound" {
		t.Errorf("KindOf = %q, want NotFound", got)
	}
	if got := store.MessageOf(err); got != `story "missing" not found` {
		t.Errorf("MessageOf = %q", got)
	}
	if store.KindOf(nil) != "" {
		t.Error("KindOf(nil) should be empty")
	}
	if store.KindOf(errors.New("raw")) != "StorageFailure" {
		t.Error("foreign errors should report StorageFailure")
	}
}
