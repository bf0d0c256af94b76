// SPDX-License-Identifier: Apache-2.0

// Package session provides server-side session state: the session record,
// the storage contract, and the identity-token handle the authentication
// flows are handed per request.
package session

import (
	"context"
	"time"

	"github.com/samber/oops"
)

// DefaultExpiry is how long a session lives. The expiry is fixed when the
// session is created; it does not slide on activity.
const DefaultExpiry = 24 * time.Hour

// Session is one server-side session. Clients hold only the opaque ID; the
// identity token (a user record key) and metadata stay server-side.
type Session struct {
	ID            string            `json:"session_id"`
	IdentityToken string            `json:"identity_token,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	ExpiresAt     time.Time         `json:"expires_at"`
}

// New creates a Session with a fixed expiry starting now.
func New(id string) (*Session, error) {
	if id == "" {
		return nil, oops.Code("SESSION_INVALID_ID").Errorf("session id cannot be empty")
	}
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(DefaultExpiry),
	}, nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store defines how sessions are persisted. Implementations must be safe
// for concurrent use. Get returns (nil, nil) for an unknown or expired ID.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// Handle is the per-request seam the authentication flows use to attach and
// detach an identity. It hides the session ID, the store, and the session's
// creation from the caller.
type Handle interface {
	// IdentityToken returns the currently attached token, or "" if the
	// session is anonymous or absent.
	IdentityToken(ctx context.Context) (string, error)

	// SetIdentityToken attaches a token, creating the session if needed.
	// The session ID rotates on every attach; re-attaching overwrites the
	// previous token under a fresh ID.
	SetIdentityToken(ctx context.Context, token string) error

	// ClearIdentityToken detaches the identity. Clearing an anonymous
	// session is a no-op, not an error.
	ClearIdentityToken(ctx context.Context) error
}

// StoreHandle implements Handle over a Store and a session ID. The session
// record is created lazily on the first attach, so anonymous requests never
// write to the store. Attaching an identity rotates the session ID to a
// fresh server-generated one: an identity never lives under an ID the
// client chose or saw before authenticating.
type StoreHandle struct {
	store    Store
	id       string
	onRotate func(newID string)
}

// NewHandle creates a handle bound to the given session ID.
func NewHandle(store Store, id string) (*StoreHandle, error) {
	if store == nil {
		return nil, oops.Errorf("session store is required")
	}
	if id == "" {
		return nil, oops.Code("SESSION_INVALID_ID").Errorf("session id cannot be empty")
	}
	return &StoreHandle{store: store, id: id}, nil
}

// ID returns the session ID the handle is currently bound to. It changes
// when an attach rotates the session.
func (h *StoreHandle) ID() string {
	return h.id
}

// OnRotate registers a callback invoked with the new session ID after an
// attach rotates it. The HTTP layer uses this to reissue the cookie.
func (h *StoreHandle) OnRotate(fn func(newID string)) {
	h.onRotate = fn
}

func (h *StoreHandle) IdentityToken(ctx context.Context) (string, error) {
	sess, err := h.store.Get(ctx, h.id)
	if err != nil {
		return "", oops.Code("SESSION_READ_FAILED").
			With("operation", "get session").
			Wrap(err)
	}
	if sess == nil || sess.IsExpired() {
		return "", nil
	}
	return sess.IdentityToken, nil
}

func (h *StoreHandle) SetIdentityToken(ctx context.Context, token string) error {
	if token == "" {
		return oops.Code("SESSION_INVALID_TOKEN").Errorf("identity token cannot be empty")
	}

	prev, err := h.store.Get(ctx, h.id)
	if err != nil {
		return oops.Code("SESSION_WRITE_FAILED").
			With("operation", "get session").
			Wrap(err)
	}

	// The pre-attach ID is retired before the identity exists anywhere, so
	// a planted or previously observed ID can never resolve to it.
	if prev != nil {
		if err := h.store.Delete(ctx, h.id); err != nil {
			return oops.Code("SESSION_WRITE_FAILED").
				With("operation", "delete session").
				Wrap(err)
		}
	}

	fresh, err := GenerateID()
	if err != nil {
		return err
	}

	sess, err := New(fresh)
	if err != nil {
		return err
	}
	sess.IdentityToken = token
	if prev != nil {
		sess.Metadata = prev.Metadata
	}
	if err := h.store.Create(ctx, sess); err != nil {
		return oops.Code("SESSION_WRITE_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	h.id = fresh
	if h.onRotate != nil {
		h.onRotate(fresh)
	}
	return nil
}

func (h *StoreHandle) ClearIdentityToken(ctx context.Context) error {
	sess, err := h.store.Get(ctx, h.id)
	if err != nil {
		return oops.Code("SESSION_WRITE_FAILED").
			With("operation", "get session").
			Wrap(err)
	}
	if sess == nil || sess.IdentityToken == "" {
		return nil
	}

	sess.IdentityToken = ""
	if err := h.store.Update(ctx, sess); err != nil {
		return oops.Code("SESSION_WRITE_FAILED").
			With("operation", "update session").
			Wrap(err)
	}
	return nil
}
