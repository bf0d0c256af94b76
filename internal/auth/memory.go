// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MemoryUserRepository is a mutex-guarded in-memory UserRepository, used by
// `serve --dev` and by tests. Records do not survive a restart.
type MemoryUserRepository struct {
	mu      sync.Mutex
	byID    map[ulid.ULID]User
	byEmail map[string]ulid.ULID
}

// NewMemoryUserRepository creates an empty in-memory repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[ulid.ULID]User),
		byEmail: make(map[string]ulid.ULID),
	}
}

// Create stores a new record. A duplicate normalized email fails the same
// way the Postgres unique index does.
func (m *MemoryUserRepository) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := NormalizeEmail(user.Email)
	if _, exists := m.byEmail[email]; exists {
		return oops.Code(CodeEmailInUse).Errorf("email in use")
	}

	m.byID[user.ID] = *user
	m.byEmail[email] = user.ID
	return nil
}

// GetByID retrieves a record by its key.
func (m *MemoryUserRepository) GetByID(_ context.Context, id ulid.ULID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(ErrNotFound)
	}
	out := u
	return &out, nil
}

// GetByEmail retrieves a record by email (case-insensitive).
func (m *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").
			With("email", email).
			Wrap(ErrNotFound)
	}
	u := m.byID[id]
	out := u
	return &out, nil
}

// Delete removes a record. Test helper for stale-token scenarios; the
// production schema has no delete path.
func (m *MemoryUserRepository) Delete(_ context.Context, id ulid.ULID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.byID[id]; ok {
		delete(m.byEmail, NormalizeEmail(u.Email))
		delete(m.byID, id)
	}
}

// Len reports the number of records. Test helper.
func (m *MemoryUserRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
