// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

const redisKeyPrefix = "session:"

// RedisStore implements Store on Redis. The TTL mirrors the session's fixed
// expiry, so Redis evicts stale sessions on its own.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: redisKeyPrefix}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Create stores a new session.
func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry must be in the future")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return oops.Code("SESSION_ENCODE_FAILED").Wrap(err)
	}

	if err := r.client.Set(ctx, r.key(s.ID), data, ttl).Err(); err != nil {
		return oops.Code("SESSION_STORE_FAILED").
			With("operation", "set session").
			Wrap(err)
	}
	return nil
}

// Get retrieves a session by ID. Unknown or expired IDs yield (nil, nil).
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	val, err := r.client.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("SESSION_STORE_FAILED").
			With("operation", "get session").
			Wrap(err)
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, oops.Code("SESSION_DECODE_FAILED").Wrap(err)
	}
	return &s, nil
}

// Update rewrites a session, keeping the TTL anchored to the original
// fixed expiry. An already-expired session is deleted instead.
func (r *RedisStore) Update(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return r.Delete(ctx, s.ID)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return oops.Code("SESSION_ENCODE_FAILED").Wrap(err)
	}

	if err := r.client.Set(ctx, r.key(s.ID), data, ttl).Err(); err != nil {
		return oops.Code("SESSION_STORE_FAILED").
			With("operation", "update session").
			Wrap(err)
	}
	return nil
}

// Delete removes a session by ID.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return oops.Code("SESSION_STORE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}
