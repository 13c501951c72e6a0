package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the volatile backend: a process-local map guarded by a
// reader/writer lock. Zero setup, no persistence; all sessions are lost on
// restart, which is an accepted trade-off for disposable deployments. Every
// operation returns a nil error.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty volatile session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// CreateSession generates an id and inserts the record under one write lock.
func (m *MemoryStore) CreateSession(_ context.Context, userID int64, lifetime time.Duration) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := newID(func(id string) bool {
		_, ok := m.sessions[id]
		return ok
	})
	s := newSession(userID, id, lifetime)
	m.sessions[id] = s
	return &s, nil
}

// GetSession returns the session or (nil, nil). Expired sessions are
// returned unfiltered.
func (m *MemoryStore) GetSession(_ context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// DeleteSession removes and returns the session, or (nil, nil) when absent.
func (m *MemoryStore) DeleteSession(_ context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	delete(m.sessions, sessionID)
	return &s, nil
}

// PurgeExpired removes every session past its expiry.
func (m *MemoryStore) PurgeExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, s := range m.sessions {
		if now.After(s.Expires) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op for the volatile backend.
func (m *MemoryStore) Close() error {
	return nil
}

// Len reports the number of live records, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
