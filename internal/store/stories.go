package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const storyColumns = `
	SELECT id, title, as_a, i_want, so_that, current_phase,
	       acceptance_criteria, progress_notes, goal_id, created_at, updated_at
	FROM stories`

// CreateStory records a new story in the defining phase. A non-empty
// GoalID must name a goal in the same workspace.
func (s *Store) CreateStory(ctx context.Context, p CreateStoryParams) (*Story, error) {
	if err := requireText(
		"user_key", p.UserKey,
		"title", p.Title,
		"as_a", p.AsA,
		"i_want", p.IWant,
		"so_that", p.SoThat,
	); err != nil {
		return nil, err
	}
	goalID := strings.TrimSpace(p.GoalID)

	var story *Story
	err := s.withTx(ctx, "create story", func(tx *sql.Tx) error {
		if _, err := ensureRegistration(ctx, tx, p.UserKey, ""); err != nil {
			return err
		}
		if goalID != "" {
			ok, err := goalExists(ctx, tx, p.UserKey, goalID)
			if err != nil {
				return err
			}
			if !ok {
				return referenceNotFound(fmt.Sprintf("goal %q not found in workspace %q", goalID, p.UserKey))
			}
		}

		id, err := nextID(ctx, tx)
		if err != nil {
			return err
		}

		now := Now()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stories (id, user_key, title, as_a, i_want, so_that,
			                      acceptance_criteria, current_phase, progress_notes,
			                      goal_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, '[]', ?, '[]', ?, ?, ?)`,
			id, p.UserKey, p.Title, p.AsA, p.IWant, p.SoThat,
			string(PhaseDefining), nullableString(goalID), now, now,
		); err != nil {
			return storageFailure("inserting story", err)
		}

		story = &Story{
			ID:                 id,
			Title:              p.Title,
			AsA:                p.AsA,
			IWant:              p.IWant,
			SoThat:             p.SoThat,
			CurrentPhase:       PhaseDefining,
			AcceptanceCriteria: []string{},
			ProgressNotes:      []ProgressNote{},
			GoalID:             nullableString(goalID),
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("user_key", p.UserKey).
		Str("story_id", story.ID).
		Str("goal_id", goalID).
		Msg("story created")
	return story, nil
}

// UpdateStoryProgress moves a story to phase and appends a progress note.
// Any phase may follow any other; earlier notes are never modified.
func (s *Store) UpdateStoryProgress(ctx context.Context, key, storyID, phase, notes string) (*Story, error) {
	if err := requireText("user_key", key, "story_id", storyID); err != nil {
		return nil, err
	}
	next, err := ParsePhase(phase)
	if err != nil {
		return nil, err
	}

	var story *Story
	err = s.withTx(ctx, "update story", func(tx *sql.Tx) error {
		var err error
		story, err = loadStory(ctx, tx, key, storyID)
		if err != nil {
			return err
		}

		now := Now()
		story.ProgressNotes = append(story.ProgressNotes, ProgressNote{
			Timestamp: now,
			Phase:     next,
			Notes:     notes,
		})
		story.CurrentPhase = next
		story.UpdatedAt = now

		encoded, err := json.Marshal(story.ProgressNotes)
		if err != nil {
			return storageFailure("encoding progress notes", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE stories SET current_phase = ?, progress_notes = ?, updated_at = ?
			 WHERE id = ? AND user_key = ?`,
			string(next), string(encoded), now, storyID, key,
		); err != nil {
			return storageFailure("updating story", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("user_key", key).
		Str("story_id", storyID).
		Str("phase", string(next)).
		Int("notes", len(story.ProgressNotes)).
		Msg("story progress updated")
	return story, nil
}

// AddAcceptanceCriteria appends criteria to a story. Blank entries are
// rejected; existing criteria are kept in order.
func (s *Store) AddAcceptanceCriteria(ctx context.Context, key, storyID string, criteria []string) (*Story, error) {
	if err := requireText("user_key", key, "story_id", storyID); err != nil {
		return nil, err
	}
	if len(criteria) == 0 {
		return nil, invalidInput("'criteria' must contain at least one entry")
	}
	for i, c := range criteria {
		if strings.TrimSpace(c) == "" {
			return nil, invalidInput(fmt.Sprintf("criterion %d is empty", i+1))
		}
	}

	var story *Story
	err := s.withTx(ctx, "add acceptance criteria", func(tx *sql.Tx) error {
		var err error
		story, err = loadStory(ctx, tx, key, storyID)
		if err != nil {
			return err
		}

		story.AcceptanceCriteria = append(story.AcceptanceCriteria, criteria...)
		story.UpdatedAt = Now()

		encoded, err := json.Marshal(story.AcceptanceCriteria)
		if err != nil {
			return storageFailure("encoding acceptance criteria", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE stories SET acceptance_criteria = ?, updated_at = ? WHERE id = ? AND user_key = ?`,
			string(encoded), story.UpdatedAt, storyID, key,
		); err != nil {
			return storageFailure("updating acceptance criteria", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return story, nil
}

// ListStories returns the workspace's stories in creation order, narrowed by
// f. GoalID and Phase combine with AND. An unknown workspace, or a phase
// that no story can be in, yields an empty slice.
func (s *Store) ListStories(ctx context.Context, key string, f StoryFilter) ([]Story, error) {
	if err := requireText("user_key", key); err != nil {
		return nil, err
	}

	var stories []Story
	err := s.withTx(ctx, "list stories", func(tx *sql.Tx) error {
		var err error
		stories, err = listStories(ctx, tx, key, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stories, nil
}

// listStories runs the filtered story query inside tx.
func listStories(ctx context.Context, tx *sql.Tx, key string, f StoryFilter) ([]Story, error) {
	query := storyColumns + ` WHERE user_key = ?`
	args := []any{key}

	if goalID := strings.TrimSpace(f.GoalID); goalID != "" {
		query += " AND goal_id = ?"
		args = append(args, goalID)
	}
	if f.Phase != "" {
		if !Phase(f.Phase).Valid() {
			return []Story{}, nil
		}
		query += " AND current_phase = ?"
		args = append(args, f.Phase)
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageFailure("listing stories", err)
	}
	defer func() { _ = rows.Close() }()

	stories := []Story{}
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFailure("listing stories", err)
	}
	return stories, nil
}

// GetStoryDetails returns a story plus a summary of its goal.
func (s *Store) GetStoryDetails(ctx context.Context, key, storyID string) (*StoryDetails, error) {
	if err := requireText("user_key", key, "story_id", storyID); err != nil {
		return nil, err
	}

	var details *StoryDetails
	err := s.withTx(ctx, "get story", func(tx *sql.Tx) error {
		story, err := loadStory(ctx, tx, key, storyID)
		if err != nil {
			return err
		}
		details = &StoryDetails{Story: *story}

		if story.GoalID == nil {
			return nil
		}
		ref := GoalRef{ID: *story.GoalID}
		err = tx.QueryRowContext(ctx,
			`SELECT title, vision FROM goals WHERE id = ? AND user_key = ?`, ref.ID, key,
		).Scan(&ref.Title, &ref.Vision)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil
		case err != nil:
			return storageFailure("loading story goal", err)
		}
		details.Goal = &ref
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// loadStory fetches a story scoped to key.
func loadStory(ctx context.Context, tx *sql.Tx, key, storyID string) (*Story, error) {
	row := tx.QueryRowContext(ctx, storyColumns+` WHERE id = ? AND user_key = ?`, storyID, key)
	st, err := scanStory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(fmt.Sprintf("story %q not found", storyID))
	}
	return st, err
}

func scanStory(sc scanner) (*Story, error) {
	var (
		st       Story
		phase    string
		criteria string
		notes    string
	)
	err := sc.Scan(
		&st.ID, &st.Title, &st.AsA, &st.IWant, &st.SoThat, &phase,
		&criteria, &notes, &st.GoalID, &st.CreatedAt, &st.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, storageFailure("reading story", err)
	}

	st.CurrentPhase = Phase(phase)
	st.AcceptanceCriteria = []string{}
	if err := json.Unmarshal([]byte(criteria), &st.AcceptanceCriteria); err != nil {
		return nil, storageFailure(fmt.Sprintf("decoding acceptance criteria of %q", st.ID), err)
	}
	st.ProgressNotes = []ProgressNote{}
	if err := json.Unmarshal([]byte(notes), &st.ProgressNotes); err != nil {
		return nil, storageFailure(fmt.Sprintf("decoding progress notes of %q", st.ID), err)
	}
	return &st, nil
}

// nullableString maps "" to nil for optional columns.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
