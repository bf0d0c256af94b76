// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/ashley-desouza/graphql-auth-server/internal/session"
)

// Service orchestrates the signup, login, and logout flows. Per session the
// state machine is Anonymous -> Authenticated (signup or login),
// Authenticated -> Anonymous (logout); a re-login overwrites the attached
// token. Nothing else transitions.
type Service struct {
	users      UserRepository
	strategy   Strategy
	serializer *IdentitySerializer
	hasher     PasswordHasher
	logger     *slog.Logger
}

// NewService creates a Service.
func NewService(users UserRepository, strategy Strategy, serializer *IdentitySerializer, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(users, strategy, serializer, hasher, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, strategy Strategy, serializer *IdentitySerializer, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if strategy == nil {
		return nil, oops.Errorf("credential strategy is required")
	}
	if serializer == nil {
		return nil, oops.Errorf("identity serializer is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		users:      users,
		strategy:   strategy,
		serializer: serializer,
		hasher:     hasher,
		logger:     logger,
	}, nil
}

// Signup creates a new password-backed record and attaches its identity to
// the session. The uniqueness check runs against the normalized email, the
// same normalization login uses. The check and the create are not atomic;
// the store's unique index is the backstop for the race between two
// concurrent signups (the repository maps that violation to the same
// email-in-use failure).
func (s *Service) Signup(ctx context.Context, handle session.Handle, email, password string) (*User, error) {
	if email == "" || password == "" {
		recordAttempt("signup", StatusRejected)
		return nil, oops.Code(CodeMissingField).Errorf("you must provide an email and password")
	}

	email = NormalizeEmail(email)

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		recordAttempt("signup", StatusRejected)
		return nil, oops.Code(CodeEmailInUse).Errorf("email in use")
	case errors.Is(err, ErrNotFound):
		// free to create
	default:
		recordAttempt("signup", StatusStoreError)
		return nil, oops.Code(CodeStoreUnavailable).
			With("operation", "check existing email").
			Wrap(err)
	}

	// The secret is hashed exactly once, inside the factory.
	user, err := NewUser(email, password, s.hasher)
	if err != nil {
		recordAttempt("signup", StatusRejected)
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if HasCode(err, CodeEmailInUse) {
			recordAttempt("signup", StatusRejected)
			return nil, err
		}
		recordAttempt("signup", StatusStoreError)
		return nil, oops.Code(CodeStoreUnavailable).
			With("operation", "create user").
			Wrap(err)
	}

	if err := s.attach(ctx, handle, user); err != nil {
		// The record exists; a retried login will succeed. No rollback.
		recordAttempt("signup", StatusAttachError)
		s.logger.Warn("session attach failed after signup",
			"user_id", user.ID.String())
		return nil, err
	}

	recordAttempt("signup", StatusSuccess)
	s.logger.Info("user signed up", "user_id", user.ID.String())
	return user, nil
}

// Login authenticates via the credential strategy and attaches the identity
// to the session. On any strategy failure no session call is made at all.
func (s *Service) Login(ctx context.Context, handle session.Handle, email, password string) (*User, error) {
	user, err := s.strategy.Authenticate(ctx, email, password)
	if err != nil {
		if HasCode(err, CodeInvalidCredentials) {
			recordAttempt("login", StatusRejected)
		} else {
			recordAttempt("login", StatusStoreError)
		}
		return nil, err
	}

	if err := s.attach(ctx, handle, user); err != nil {
		recordAttempt("login", StatusAttachError)
		s.logger.Warn("session attach failed after login",
			"user_id", user.ID.String())
		return nil, err
	}

	recordAttempt("login", StatusSuccess)
	s.logger.Info("user logged in", "user_id", user.ID.String())
	return user, nil
}

// Logout detaches the current identity and returns whoever was attached
// beforehand, or nil for an anonymous session. Logging out twice is fine.
func (s *Service) Logout(ctx context.Context, handle session.Handle) (*User, error) {
	token, err := handle.IdentityToken(ctx)
	if err != nil {
		recordAttempt("logout", StatusStoreError)
		return nil, err
	}
	if token == "" {
		recordAttempt("logout", StatusSuccess)
		return nil, nil
	}

	// Resolve before clearing so the caller gets the departing identity.
	// A stale token (record since deleted) resolves to nil, not an error.
	user, err := s.serializer.Deserialize(ctx, token)
	if err != nil {
		recordAttempt("logout", StatusStoreError)
		return nil, err
	}

	if err := handle.ClearIdentityToken(ctx); err != nil {
		recordAttempt("logout", StatusStoreError)
		return nil, oops.Code(CodeSessionAttachFailed).
			With("operation", "clear identity token").
			Wrap(err)
	}

	recordAttempt("logout", StatusSuccess)
	if user != nil {
		s.logger.Info("user logged out", "user_id", user.ID.String())
	}
	return user, nil
}

// CurrentUser resolves the session's attached identity, or nil if the
// session is anonymous.
func (s *Service) CurrentUser(ctx context.Context, handle session.Handle) (*User, error) {
	token, err := handle.IdentityToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.serializer.Deserialize(ctx, token)
}

// attach serializes the identity into the session.
func (s *Service) attach(ctx context.Context, handle session.Handle, user *User) error {
	if handle == nil {
		return oops.Code(CodeSessionAttachFailed).Errorf("no session handle")
	}
	if err := handle.SetIdentityToken(ctx, s.serializer.Serialize(user)); err != nil {
		return oops.Code(CodeSessionAttachFailed).
			With("operation", "set identity token").
			Wrap(err)
	}
	return nil
}
