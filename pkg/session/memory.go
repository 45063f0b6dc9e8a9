package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a map. Stored sessions are copied so callers
// cannot mutate them behind the store's back.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.IsExpired() {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryStore) Set(_ context.Context, s *Session) error {
	m.mu.Lock()
	m.sessions[s.ID] = *s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Latest(_ context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *Session
	for _, s := range m.sessions {
		if s.IsExpired() {
			continue
		}
		if latest == nil || s.UpdatedAt.After(latest.UpdatedAt) {
			s := s
			latest = &s
		}
	}
	return latest, nil
}

func (m *MemoryStore) Cleanup(_ context.Context) error {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, id)
		}
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
