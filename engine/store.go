/*
store.go - Persistence interface for state snapshots

PURPOSE:
  The engine persists the entire AppState aggregate on every mutation and
  restores it on startup. No partial or incremental persistence exists:
  transitions produce complete snapshots, so full-snapshot replace is
  correct by construction.

IMPLEMENTATIONS:
  - store/jsonfile: flat JSON document on disk (the default)
  - store/sqlite:   snapshot replace inside a SQLite transaction
  - engine/store:   in-memory, for tests and throwaway runs
*/
package engine

import "context"

// StateStore persists complete AppState snapshots.
type StateStore interface {
	// Load returns the stored snapshot. The bool is false when no snapshot
	// exists yet, in which case the engine seeds the default state.
	Load(ctx context.Context) (AppState, bool, error)

	// Save replaces the stored snapshot with the given one. Either the whole
	// snapshot is written or the previous one remains intact.
	Save(ctx context.Context, state AppState) error

	// Close releases any underlying resources.
	Close() error
}
