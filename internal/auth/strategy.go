// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// Strategy validates one authentication method. Only the local
// email+password strategy is implemented; external-provider strategies plug
// in behind the same contract.
type Strategy interface {
	// Authenticate validates an (email, password) pair against the stored
	// record. It mutates nothing. On success it returns the record; any
	// client-attributable failure carries CodeInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*User, error)
}

// dummyPasswordHash is verified against when no record matches the email,
// so response time does not reveal whether the address is registered.
// This is NOT a real credential.
//
//nolint:gosec // G101: intentionally fake hash for timing equalization, not a credential.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// LocalStrategy authenticates email+password pairs against a UserRepository.
type LocalStrategy struct {
	users  UserRepository
	hasher PasswordHasher
}

// NewLocalStrategy creates a LocalStrategy.
func NewLocalStrategy(users UserRepository, hasher PasswordHasher) (*LocalStrategy, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	return &LocalStrategy{users: users, hasher: hasher}, nil
}

// Authenticate looks up the record for the normalized email and verifies
// the password against its stored hash. "No such email" and "wrong
// password" are indistinguishable to the caller.
func (s *LocalStrategy) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, lookupErr := s.users.GetByEmail(ctx, NormalizeEmail(email))

	// Pick the hash to verify against. Missing records and provider-only
	// records verify against the dummy hash to keep timing flat.
	targetHash := dummyPasswordHash
	userExists := false

	switch {
	case lookupErr == nil:
		if user.HasPassword() {
			targetHash = user.PasswordHash
		}
		userExists = user.HasPassword()
	case errors.Is(lookupErr, ErrNotFound):
		// fall through with the dummy hash
	default:
		return nil, oops.Code(CodeStoreUnavailable).
			With("operation", "get user by email").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, oops.Code(CodeInvalidCredentials).Errorf("invalid credentials")
		}
		return nil, oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		return nil, oops.Code(CodeInvalidCredentials).Errorf("invalid credentials")
	}

	return user, nil
}
