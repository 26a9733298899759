package store

import (
	"context"
	"sync"

	"github.com/planwise/planner-bot/internal/domain"
)

// MemorySnapshot is a snapshot adapter that only lives in memory. It backs
// tests and local development without a data directory.
type MemorySnapshot struct {
	mu    sync.Mutex
	users map[string]*domain.User

	// FailSave, when set, makes the next Save return this error once.
	FailSave error
	saves    int
}

var _ Snapshot = (*MemorySnapshot)(nil)

// NewMemorySnapshot builds an empty in-memory snapshot.
func NewMemorySnapshot() *MemorySnapshot {
	return &MemorySnapshot{users: make(map[string]*domain.User)}
}

// Load returns a copy of the stored map.
func (m *MemorySnapshot) Load(_ context.Context) (map[string]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]*domain.User, len(m.users))
	for id, u := range m.users {
		out[id] = u.Clone()
	}
	return out, nil
}

// Save replaces the stored map with a copy of users.
func (m *MemorySnapshot) Save(_ context.Context, users map[string]*domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSave != nil {
		err := m.FailSave
		m.FailSave = nil
		return err
	}

	m.saves++
	replaced := make(map[string]*domain.User, len(users))
	for id, u := range users {
		replaced[id] = u.Clone()
	}
	m.users = replaced
	return nil
}

// Saves returns how many successful Save calls happened.
func (m *MemorySnapshot) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
