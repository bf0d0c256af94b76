// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// User represents a persisted identity record. The email is normalized and
// immutable after creation. PasswordHash holds only the bcrypt output; the
// original secret never touches the record. A record may be password-backed,
// provider-backed (GitHubID set, no hash), or both.
type User struct {
	ID           ulid.ULID
	Email        string
	PasswordHash string  // empty for provider-only records
	GitHubID     *string // external provider identifier, nil if none
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the record carries a credential hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// NormalizeEmail lowercases and trims an identifier. Signup and login both
// go through this, so the existence check and the login lookup always see
// the same value.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser creates a password-backed record. The password is hashed here,
// at creation time, and nowhere else: re-saving an existing record never
// re-hashes, because no other path writes PasswordHash.
func NewUser(email, password string, hasher PasswordHasher) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, oops.Code(CodeMissingField).Errorf("email cannot be empty")
	}
	if password == "" {
		return nil, oops.Code(CodeMissingField).Errorf("password cannot be empty")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewProviderUser creates a provider-only record with no local credential.
func NewProviderUser(email, githubID string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, oops.Code(CodeMissingField).Errorf("email cannot be empty")
	}
	if githubID == "" {
		return nil, oops.Code(CodeMissingField).Errorf("provider id cannot be empty")
	}

	now := time.Now()
	return &User{
		ID:        ulid.Make(),
		Email:     email,
		GitHubID:  &githubID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UserRepository manages identity record persistence. Implementations must
// be safe for concurrent use; the core never holds locks across calls.
type UserRepository interface {
	// Create stores a new record.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a record by its key.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a record by email (case-insensitive).
	// Returns an error wrapping ErrNotFound if no record matches.
	GetByEmail(ctx context.Context, email string) (*User, error)
}
