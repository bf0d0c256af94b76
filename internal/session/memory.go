// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"sync"
)

// MemoryStore holds sessions in RAM behind a mutex. It is the store used in
// tests and by `serve --dev`; sessions do not survive a process restart and
// there is no cross-process sharing, which is exactly what those callers
// want.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Create stores a new session.
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

// Get retrieves a session by ID. Unknown or expired IDs yield (nil, nil);
// expired entries are dropped on read since there is no background purge.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	if s.IsExpired() {
		delete(m.sessions, id)
		return nil, nil
	}
	out := s
	return &out, nil
}

// Update rewrites a session.
func (m *MemoryStore) Update(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

// Delete removes a session by ID. Deleting an unknown ID is a no-op.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports the number of live sessions. Test helper.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
