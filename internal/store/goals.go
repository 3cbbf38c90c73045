package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// goalColumns selects a goal with its live story counts. Callers append
// WHERE/GROUP BY/ORDER BY clauses.
const goalColumns = `
	SELECT g.id, g.title, g.vision, g.success_metrics, g.created_at, g.updated_at,
	       COUNT(s.id),
	       COUNT(CASE WHEN s.current_phase = 'complete' THEN 1 END)
	FROM goals g
	LEFT JOIN stories s ON s.goal_id = g.id AND s.user_key = g.user_key`

// CreateGoal records a new goal in p.UserKey's workspace, registering the
// workspace on first use.
func (s *Store) CreateGoal(ctx context.Context, p CreateGoalParams) (*Goal, error) {
	if err := requireText("user_key", p.UserKey, "title", p.Title, "vision", p.Vision); err != nil {
		return nil, err
	}

	var goal *Goal
	err := s.withTx(ctx, "create goal", func(tx *sql.Tx) error {
		if _, err := ensureRegistration(ctx, tx, p.UserKey, ""); err != nil {
			return err
		}
		id, err := nextID(ctx, tx)
		if err != nil {
			return err
		}

		now := Now()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO goals (id, user_key, title, vision, success_metrics, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, p.UserKey, p.Title, p.Vision, p.SuccessMetrics, now, now,
		); err != nil {
			return storageFailure("inserting goal", err)
		}

		goal = &Goal{
			ID:             id,
			Title:          p.Title,
			Vision:         p.Vision,
			SuccessMetrics: p.SuccessMetrics,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("user_key", p.UserKey).Str("goal_id", goal.ID).Msg("goal created")
	return goal, nil
}

// ListGoals returns every goal in the workspace, oldest first. An unknown
// workspace yields an empty slice.
func (s *Store) ListGoals(ctx context.Context, key string) ([]Goal, error) {
	if err := requireText("user_key", key); err != nil {
		return nil, err
	}

	var goals []Goal
	err := s.withTx(ctx, "list goals", func(tx *sql.Tx) error {
		var err error
		goals, err = listGoals(ctx, tx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func listGoals(ctx context.Context, tx *sql.Tx, key string) ([]Goal, error) {
	rows, err := tx.QueryContext(ctx,
		goalColumns+`
		WHERE g.user_key = ?
		GROUP BY g.id
		ORDER BY g.created_at ASC, g.rowid ASC`,
		key,
	)
	if err != nil {
		return nil, storageFailure("listing goals", err)
	}
	defer func() { _ = rows.Close() }()

	goals := []Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFailure("listing goals", err)
	}
	return goals, nil
}

// GetGoal returns one goal with its story counts.
func (s *Store) GetGoal(ctx context.Context, key, goalID string) (*Goal, error) {
	if err := requireText("user_key", key, "goal_id", goalID); err != nil {
		return nil, err
	}

	var goal *Goal
	err := s.withTx(ctx, "get goal", func(tx *sql.Tx) error {
		var err error
		goal, err = loadGoal(ctx, tx, key, goalID)
		return err
	})
	return goal, err
}

// loadGoal fetches a goal scoped to key, returning NotFound if it does not
// exist in that workspace.
func loadGoal(ctx context.Context, tx *sql.Tx, key, goalID string) (*Goal, error) {
	row := tx.QueryRowContext(ctx,
		goalColumns+`
		WHERE g.user_key = ? AND g.id = ?
		GROUP BY g.id`,
		key, goalID,
	)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(fmt.Sprintf("goal %q not found", goalID))
	}
	return g, err
}

// goalExists reports whether goalID names a goal owned by key.
func goalExists(ctx context.Context, tx *sql.Tx, key, goalID string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM goals WHERE id = ? AND user_key = ?`, goalID, key,
	).Scan(&n)
	if err != nil {
		return false, storageFailure("checking goal", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(sc scanner) (*Goal, error) {
	var g Goal
	err := sc.Scan(
		&g.ID, &g.Title, &g.Vision, &g.SuccessMetrics, &g.CreatedAt, &g.UpdatedAt,
		&g.TotalStories, &g.CompletedStories,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, storageFailure("reading goal", err)
	}
	return &g, nil
}
