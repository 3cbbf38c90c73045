package store

import (
	"database/sql"
	"time"
)

// DB exposes the internal *sql.DB for test helpers in store_test.
// This file only compiles during `go test`.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SetRandomID replaces the id source and returns a restore func.
func SetRandomID(fn func() string) func() {
	prev := randomID
	randomID = fn
	return func() { randomID = prev }
}

// SetClock replaces the clock and returns a restore func.
func SetClock(fn func() time.Time) func() {
	prev := timeNow
	timeNow = fn
	return func() { timeNow = prev }
}

// SetCommitHook overrides transaction commit for this store.
func (s *Store) SetCommitHook(fn func(tx *sql.Tx) error) {
	s.hooks.commit = fn
}
