package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process session store. It is the default backend
// and the one used in tests; state lives exactly as long as the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// GetOrCreate returns the session for id, creating a fresh one if needed.
func (m *MemoryStore) GetOrCreate(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Double-check after acquiring write lock
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	s = New(id)
	m.sessions[id] = s
	return s, nil
}

// Save persists the session, refreshing its LastSeen.
func (m *MemoryStore) Save(_ context.Context, s Session) error {
	s.LastSeen = time.Now()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return nil
}

// Reset overwrites the session with defaults.
func (m *MemoryStore) Reset(_ context.Context, id string) (Session, error) {
	s := New(id)
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s, nil
}

// Touch refreshes the inactivity timer.
func (m *MemoryStore) Touch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	s.LastSeen = time.Now()
	m.sessions[id] = s
	return nil
}

// Idle lists sessions idle longer than window, skipping fresh ones.
func (m *MemoryStore) Idle(_ context.Context, window time.Duration) ([]Session, error) {
	cutoff := time.Now().Add(-window)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var idle []Session
	for _, s := range m.sessions {
		if s.State == StateNew || s.LastSeen.After(cutoff) {
			continue
		}
		idle = append(idle, s)
	}
	return idle, nil
}

// Expire resets id if it is still idle longer than window. The recheck
// under the store lock makes the scan-then-reset race harmless: a session
// saved since the Idle scan is left alone.
func (m *MemoryStore) Expire(_ context.Context, id string, window time.Duration) (Session, bool, error) {
	cutoff := time.Now().Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.State == StateNew || s.LastSeen.After(cutoff) {
		return Session{}, false, nil
	}
	m.sessions[id] = New(id)
	return s, true, nil
}

// Count returns the number of sessions currently held.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
