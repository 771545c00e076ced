// Package store provides an in-memory StateStore for tests and throwaway
// runs. Snapshots are deep-copied on both Save and Load so callers can never
// alias the stored state.
package store

import (
	"context"
	"sync"

	"github.com/NOUR0003/star-academy/engine"
)

type Memory struct {
	mu    sync.RWMutex
	state engine.AppState
	saved bool

	// SaveErr, when set, is returned by the next Save. Lets tests exercise
	// the engine's no-swap-on-persist-failure guarantee.
	SaveErr error
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (engine.AppState, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.saved {
		return engine.AppState{}, false, nil
	}
	return m.state.Clone(), true, nil
}

func (m *Memory) Save(_ context.Context, state engine.AppState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		err := m.SaveErr
		m.SaveErr = nil
		return err
	}
	m.state = state.Clone()
	m.saved = true
	return nil
}

func (m *Memory) Close() error { return nil }
