// SPDX-License-Identifier: Apache-2.0

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashley-desouza/graphql-auth-server/internal/auth"
	"github.com/ashley-desouza/graphql-auth-server/internal/auth/mocks"
	"github.com/ashley-desouza/graphql-auth-server/pkg/errutil"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"A@B.COM", "a@b.com"},
		{"  user@example.com  ", "user@example.com"},
		{"MiXeD@Example.Com", "mixed@example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, auth.NormalizeEmail(tt.in))
	}
}

func TestNewUser(t *testing.T) {
	t.Run("hashes the password exactly once at creation", func(t *testing.T) {
		hasher := mocks.NewMockPasswordHasher(t)
		hasher.On("Hash", "secret123").Return("$2a$10$hashed", nil).Once()

		user, err := auth.NewUser("User@Example.COM", "secret123", hasher)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", user.Email)
		assert.Equal(t, "$2a$10$hashed", user.PasswordHash)
		assert.True(t, user.HasPassword())
		assert.Nil(t, user.GitHubID)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("rejects empty email", func(t *testing.T) {
		hasher := mocks.NewMockPasswordHasher(t)
		_, err := auth.NewUser("", "secret123", hasher)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeMissingField)
	})

	t.Run("rejects empty password before hashing", func(t *testing.T) {
		hasher := mocks.NewMockPasswordHasher(t)
		_, err := auth.NewUser("a@b.com", "", hasher)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeMissingField)
	})

	t.Run("distinct users get distinct keys", func(t *testing.T) {
		hasher := auth.NewBcryptHasher()
		u1, err := auth.NewUser("a@b.com", "pw123456", hasher)
		require.NoError(t, err)
		u2, err := auth.NewUser("c@d.com", "pw123456", hasher)
		require.NoError(t, err)
		assert.NotEqual(t, u1.ID, u2.ID)
	})
}

func TestNewProviderUser(t *testing.T) {
	t.Run("creates record without credential", func(t *testing.T) {
		user, err := auth.NewProviderUser("Dev@Example.com", "gh-12345")
		require.NoError(t, err)
		assert.Equal(t, "dev@example.com", user.Email)
		assert.False(t, user.HasPassword())
		require.NotNil(t, user.GitHubID)
		assert.Equal(t, "gh-12345", *user.GitHubID)
	})

	t.Run("rejects empty provider id", func(t *testing.T) {
		_, err := auth.NewProviderUser("dev@example.com", "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeMissingField)
	})
}
