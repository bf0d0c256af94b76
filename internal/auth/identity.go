// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// IdentitySerializer converts between a full identity record and the
// compact token kept inside session state. The token is just the record's
// key; the session store opaques the outer envelope, so no further encoding
// is needed.
type IdentitySerializer struct {
	users UserRepository
}

// NewIdentitySerializer creates an IdentitySerializer.
func NewIdentitySerializer(users UserRepository) (*IdentitySerializer, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	return &IdentitySerializer{users: users}, nil
}

// Serialize returns the token identifying the record in a session.
func (s *IdentitySerializer) Serialize(user *User) string {
	return user.ID.String()
}

// Deserialize resolves a token back to its record. A malformed token or a
// token pointing at a record that no longer exists yields (nil, nil): the
// caller treats that as "no active identity", not an error. Store failures
// are returned as errors.
func (s *IdentitySerializer) Deserialize(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, nil
	}

	id, err := ulid.Parse(token)
	if err != nil {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, oops.Code(CodeStoreUnavailable).
			With("operation", "get user by id").
			Wrap(err)
	}
	return user, nil
}
