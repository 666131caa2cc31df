package store

import (
	"context"
	"sync"

	"github.com/verte-zerg/stroop/internal/model"
)

// Memory keeps profiles in process memory. It backs tests and runs where
// the configured store could not be opened.
type Memory struct {
	mu       sync.RWMutex
	profiles model.Profiles
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{profiles: emptyProfiles()}
}

// Load implements ProfileStore.
func (m *Memory) Load(context.Context) (model.Profiles, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profiles.Clone(), nil
}

// Save implements ProfileStore.
func (m *Memory) Save(_ context.Context, profiles model.Profiles) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = profiles.Clone()
	return nil
}

// Close implements ProfileStore.
func (m *Memory) Close() error { return nil }

