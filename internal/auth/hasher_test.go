// SPDX-License-Identifier: Apache-2.0

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashley-desouza/graphql-auth-server/internal/auth"
)

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := auth.NewBcryptHasher()

	t.Run("produces self-describing hash", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$"))
		assert.NotContains(t, hash, "password123")
	})

	t.Run("same password produces different hashes (fresh salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.Error(t, err)
	})
}

func TestBcryptHasher_Verify(t *testing.T) {
	hasher := auth.NewBcryptHasher()

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("correctpassword", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("both salted outputs verify the same password", func(t *testing.T) {
		hash1, err := hasher.Hash("pw")
		require.NoError(t, err)
		hash2, err := hasher.Hash("pw")
		require.NoError(t, err)

		for _, hash := range []string{hash1, hash2} {
			ok, err := hasher.Verify("pw", hash)
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("incorrect password fails without error", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("wrongpassword", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed hash returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "not-a-valid-hash")
		assert.Error(t, err)
	})
}

func TestInstrumentedHasher(t *testing.T) {
	hasher := auth.NewInstrumentedHasher(auth.NewBcryptHasher())

	hash, err := hasher.Hash("password123")
	require.NoError(t, err)

	ok, err := hasher.Verify("password123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("other", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}
