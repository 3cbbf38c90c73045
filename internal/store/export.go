package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Export returns a complete dump of one workspace: its registration, goals
// (with counts), and stories, all in creation order.
func (s *Store) Export(ctx context.Context, key string) (*ExportData, error) {
	if err := requireText("user_key", key); err != nil {
		return nil, err
	}

	data := &ExportData{Version: ExportVersion, ExportedAt: Now()}
	err := s.withTx(ctx, "export", func(tx *sql.Tx) error {
		reg, err := getRegistration(ctx, tx, key)
		if err != nil {
			return err
		}
		data.Workspace = *reg
		if data.Goals, err = listGoals(ctx, tx, key); err != nil {
			return err
		}
		data.Stories, err = listStories(ctx, tx, key, StoryFilter{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Import loads an export document into workspace key, keeping the original
// ids and timestamps. Records whose id is already taken are skipped, which
// makes re-importing the same document a no-op. The import is atomic: a
// story that references a goal outside key fails the whole call. An
// unknown key is registered without a name; an existing name is kept.
func (s *Store) Import(ctx context.Context, key string, data *ExportData) (*ImportResult, error) {
	if err := requireText("user_key", key); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, invalidInput("export document is empty")
	}
	if err := validateExport(data); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	err := s.withTx(ctx, "import", func(tx *sql.Tx) error {
		if _, err := ensureRegistration(ctx, tx, key, ""); err != nil {
			return err
		}

		for _, g := range data.Goals {
			taken, err := idTaken(ctx, tx, g.ID)
			if err != nil {
				return err
			}
			if taken {
				result.Skipped++
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO goals (id, user_key, title, vision, success_metrics, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				g.ID, key, g.Title, g.Vision, g.SuccessMetrics, g.CreatedAt, orDefault(g.UpdatedAt, g.CreatedAt),
			); err != nil {
				return storageFailure(fmt.Sprintf("importing goal %q", g.ID), err)
			}
			result.GoalsImported++
		}

		for _, st := range data.Stories {
			taken, err := idTaken(ctx, tx, st.ID)
			if err != nil {
				return err
			}
			if taken {
				result.Skipped++
				continue
			}
			if st.GoalID != nil && *st.GoalID != "" {
				ok, err := goalExists(ctx, tx, key, *st.GoalID)
				if err != nil {
					return err
				}
				if !ok {
					return referenceNotFound(fmt.Sprintf("story %q references goal %q outside workspace %q", st.ID, *st.GoalID, key))
				}
			}

			criteria, err := json.Marshal(nonNilStrings(st.AcceptanceCriteria))
			if err != nil {
				return storageFailure("encoding acceptance criteria", err)
			}
			notes, err := json.Marshal(nonNilNotes(st.ProgressNotes))
			if err != nil {
				return storageFailure("encoding progress notes", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO stories (id, user_key, title, as_a, i_want, so_that,
				                      acceptance_criteria, current_phase, progress_notes,
				                      goal_id, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				st.ID, key, st.Title, st.AsA, st.IWant, st.SoThat,
				string(criteria), string(st.CurrentPhase), string(notes),
				st.GoalID, st.CreatedAt, orDefault(st.UpdatedAt, st.CreatedAt),
			); err != nil {
				return storageFailure(fmt.Sprintf("importing story %q", st.ID), err)
			}
			result.StoriesImported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_key", key).
		Int("goals", result.GoalsImported).
		Int("stories", result.StoriesImported).
		Int("skipped", result.Skipped).
		Msg("workspace imported")
	return result, nil
}

// validateExport checks every record before any row is written. Timestamps
// must be in the stored layout so that ordering by created_at holds.
func validateExport(data *ExportData) error {
	for i, g := range data.Goals {
		if err := requireText("id", g.ID, "title", g.Title, "vision", g.Vision, "created_at", g.CreatedAt); err != nil {
			return invalidInput(fmt.Sprintf("goal %d: %s", i+1, MessageOf(err)))
		}
		if err := checkTimestamps(g.CreatedAt, g.UpdatedAt); err != nil {
			return invalidInput(fmt.Sprintf("goal %q: %v", g.ID, err))
		}
	}
	for i, st := range data.Stories {
		if err := requireText(
			"id", st.ID, "title", st.Title, "as_a", st.AsA,
			"i_want", st.IWant, "so_that", st.SoThat, "created_at", st.CreatedAt,
		); err != nil {
			return invalidInput(fmt.Sprintf("story %d: %s", i+1, MessageOf(err)))
		}
		if err := checkTimestamps(st.CreatedAt, st.UpdatedAt); err != nil {
			return invalidInput(fmt.Sprintf("story %q: %v", st.ID, err))
		}
		if !st.CurrentPhase.Valid() {
			return invalidInput(fmt.Sprintf("story %q: invalid phase %q", st.ID, st.CurrentPhase))
		}
		for _, n := range st.ProgressNotes {
			if !n.Phase.Valid() {
				return invalidInput(fmt.Sprintf("story %q: progress note has invalid phase %q", st.ID, n.Phase))
			}
		}
	}
	return nil
}

// checkTimestamps requires createdAt, and updatedAt when set, to match
// timeLayout exactly.
func checkTimestamps(createdAt, updatedAt string) error {
	if _, err := time.Parse(timeLayout, createdAt); err != nil {
		return fmt.Errorf("created_at %q is not in layout %s", createdAt, timeLayout)
	}
	if updatedAt == "" {
		return nil
	}
	if _, err := time.Parse(timeLayout, updatedAt); err != nil {
		return fmt.Errorf("updated_at %q is not in layout %s", updatedAt, timeLayout)
	}
	return nil
}

// idTaken reports whether id is used by any goal or story in any workspace.
func idTaken(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM goals WHERE id = ?) + (SELECT COUNT(*) FROM stories WHERE id = ?)`,
		id, id,
	).Scan(&n)
	if err != nil {
		return false, storageFailure("checking id", err)
	}
	return n > 0, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilNotes(v []ProgressNote) []ProgressNote {
	if v == nil {
		return []ProgressNote{}
	}
	return v
}
