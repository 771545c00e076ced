/*
Package jsonfile persists the aggregate as a single flat JSON document.

PURPOSE:
  The engine's persistence contract is full-snapshot replace: every mutation
  writes the whole aggregate. A single JSON file is the simplest store that
  honors it — the snapshot is rewritten in place, truncated in case it
  shrank, and fsynced before the write is acknowledged.

FILE FORMAT:
  One indented JSON object matching engine.AppState's field layout. The file
  is human-readable on purpose; it doubles as the debugging view of the
  whole system.
*/
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/NOUR0003/star-academy/engine"
)

// Store is a StateStore backed by one JSON file.
type Store struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// Open creates the parent directory if needed and opens (or creates) the
// snapshot file.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	return &Store{file: f, path: path}, nil
}

func (s *Store) Close() error { return s.file.Close() }

// Load decodes the stored snapshot. An empty file means no snapshot exists
// yet and the engine should seed the default state.
func (s *Store) Load(ctx context.Context) (engine.AppState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := s.file.Stat()
	if err != nil {
		return engine.AppState{}, false, err
	}
	if info.Size() == 0 {
		return engine.AppState{}, false, nil
	}

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return engine.AppState{}, false, err
	}
	var state engine.AppState
	if err := json.NewDecoder(s.file).Decode(&state); err != nil {
		return engine.AppState{}, false, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	return state, true, nil
}

// Save rewrites the file with the given snapshot and fsyncs it.
func (s *Store) Save(ctx context.Context, state engine.AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	enc := json.NewEncoder(s.file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	// truncate in case the new snapshot is shorter
	pos, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := s.file.Truncate(pos); err != nil {
		return err
	}
	return s.file.Sync()
}
