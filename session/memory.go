package session

import (
	"context"
	"sync"

	"github.com/kbukum/deskhub/role"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[role.Role]Session
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[role.Role]Session)}
}

func (m *MemoryStore) Login(_ context.Context, s Session) error {
	if err := validate(s); err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[s.Role] = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Logout(_ context.Context, r role.Role) error {
	m.mu.Lock()
	delete(m.sessions, r)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Current(_ context.Context, r role.Role) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[r]
	if !ok {
		return nil, nil
	}
	return &s, nil
}
