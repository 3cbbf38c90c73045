package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// unknownName is stored when a workspace is registered without a name.
const unknownName = "Unknown"

// EnsureWorkspace registers key if it is new, or confirms it if it exists.
// A non-empty name that differs from the stored one replaces it. The
// returned summary carries the workspace's current goal and story counts.
func (s *Store) EnsureWorkspace(ctx context.Context, key, name string) (*WorkspaceSummary, error) {
	if err := requireText("user_key", key); err != nil {
		return nil, err
	}

	var summary *WorkspaceSummary
	err := s.withTx(ctx, "handshake", func(tx *sql.Tx) error {
		reg, err := ensureRegistration(ctx, tx, key, strings.TrimSpace(name))
		if err != nil {
			return err
		}
		summary, err = summarize(ctx, tx, reg)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("user_key", key).
		Int("goals", summary.Goals).
		Int("stories", summary.Stories).
		Msg("workspace handshake")
	return summary, nil
}

// Summary returns the counts for key without registering it. An unknown
// key yields zero counts and an empty name.
func (s *Store) Summary(ctx context.Context, key string) (*WorkspaceSummary, error) {
	if err := requireText("user_key", key); err != nil {
		return nil, err
	}

	var summary *WorkspaceSummary
	err := s.withTx(ctx, "summary", func(tx *sql.Tx) error {
		reg, err := getRegistration(ctx, tx, key)
		if errors.Is(err, ErrWorkspaceNotFound) {
			reg = &Registration{UserKey: key}
		} else if err != nil {
			return err
		}
		summary, err = summarize(ctx, tx, reg)
		return err
	})
	return summary, err
}

// getRegistration loads the registration row for key.
func getRegistration(ctx context.Context, tx *sql.Tx, key string) (*Registration, error) {
	reg := Registration{UserKey: key}
	err := tx.QueryRowContext(ctx,
		`SELECT name, created_at FROM users WHERE user_key = ?`, key,
	).Scan(&reg.Name, &reg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workspaceNotFound(fmt.Sprintf("workspace %q is not registered", key))
	}
	if err != nil {
		return nil, storageFailure("loading workspace", err)
	}
	return &reg, nil
}

// ensureRegistration is the shared registration path used by the handshake
// and by the create operations (first use registers the workspace).
func ensureRegistration(ctx context.Context, tx *sql.Tx, key, name string) (*Registration, error) {
	reg, err := getRegistration(ctx, tx, key)
	switch {
	case errors.Is(err, ErrWorkspaceNotFound):
		reg = &Registration{UserKey: key, Name: name, CreatedAt: Now()}
		if reg.Name == "" {
			reg.Name = unknownName
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (user_key, name, created_at) VALUES (?, ?, ?)`,
			reg.UserKey, reg.Name, reg.CreatedAt,
		); err != nil {
			return nil, storageFailure("registering workspace", err)
		}
		return reg, nil
	case err != nil:
		return nil, err
	}

	if name != "" && name != reg.Name {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET name = ? WHERE user_key = ?`, name, key,
		); err != nil {
			return nil, storageFailure("renaming workspace", err)
		}
		reg.Name = name
	}
	return reg, nil
}

// summarize counts goals, stories, and active (non-complete) stories.
func summarize(ctx context.Context, tx *sql.Tx, reg *Registration) (*WorkspaceSummary, error) {
	summary := &WorkspaceSummary{
		UserKey:       reg.UserKey,
		Name:          reg.Name,
		CreatedAt:     reg.CreatedAt,
		HandshakeTime: Now(),
	}
	err := tx.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM goals   WHERE user_key = ?),
			(SELECT COUNT(*) FROM stories WHERE user_key = ?),
			(SELECT COUNT(*) FROM stories WHERE user_key = ? AND current_phase != ?)`,
		reg.UserKey, reg.UserKey, reg.UserKey, string(PhaseComplete),
	).Scan(&summary.Goals, &summary.Stories, &summary.ActiveStories)
	if err != nil {
		return nil, storageFailure("counting workspace records", err)
	}
	return summary, nil
}
