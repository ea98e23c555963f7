// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Session SessionToken
	User    *User
}

// CredentialService registers users and verifies their credentials.
type CredentialService struct {
	users  UserStore
	hasher PasswordHasher
	signer TokenSigner
	opts   options
}

// NewCredentialService creates a CredentialService.
func NewCredentialService(users UserStore, hasher PasswordHasher, signer TokenSigner, opts ...Option) (*CredentialService, error) {
	if users == nil {
		return nil, oops.Errorf("user store is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if signer == nil {
		return nil, oops.Errorf("token signer is required")
	}
	return &CredentialService{
		users:  users,
		hasher: hasher,
		signer: signer,
		opts:   buildOptions(opts),
	}, nil
}

// dummyPasswordHash is verified when the email is unknown so both failure
// paths cost one hash computation. It never matches any password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates a user and issues a session token.
// Returns USER_EMAIL_TAKEN if the email is already registered.
func (s *CredentialService) Register(ctx context.Context, username, email, password string) (result *AuthResult, err error) {
	defer func() { s.opts.recorder.RecordEvent(EventRegister, outcomeOf(err)) }()

	_, err = s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, errEmailTaken()
	case !errors.Is(err, ErrNotFound):
		return nil, oops.Code("USER_REGISTER_FAILED").
			With("operation", "find by email").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, ErrEmptyPassword) {
			return nil, oops.Code(CodeEmptyPassword).Errorf("password cannot be empty")
		}
		return nil, oops.Code("USER_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(username, email, hash)
	if err != nil {
		return nil, err
	}

	if err = s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, errEmailTaken()
		}
		return nil, oops.Code("USER_REGISTER_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}

	session, err := s.signer.Issue(user.ID)
	if err != nil {
		return nil, oops.Code("USER_REGISTER_FAILED").
			With("operation", "issue session token").
			Wrap(err)
	}

	s.opts.logger.InfoContext(ctx, "user registered", "user_id", user.ID.String())
	return &AuthResult{Session: session, User: user}, nil
}

// Login verifies email and password and issues a session token. Unknown
// emails and wrong passwords both return AUTH_INVALID_CREDENTIALS.
func (s *CredentialService) Login(ctx context.Context, email, password string) (result *AuthResult, err error) {
	defer func() { s.opts.recorder.RecordEvent(EventLogin, outcomeOf(err)) }()

	user, lookupErr := s.users.FindByEmail(ctx, email)

	targetHash := dummyPasswordHash
	userExists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "find by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	// Always verify so unknown emails take as long as wrong passwords.
	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil && userExists {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}
	if !userExists || !valid {
		return nil, errInvalidCredentials()
	}

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	session, err := s.signer.Issue(user.ID)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue session token").
			Wrap(err)
	}

	return &AuthResult{Session: session, User: user}, nil
}

// upgradeHash re-derives the digest with the current algorithm. Failures are
// logged and the login still succeeds.
func (s *CredentialService) upgradeHash(ctx context.Context, user *User, password string) {
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		s.opts.logger.WarnContext(ctx, "password rehash failed",
			"user_id", user.ID.String(),
			"error", err)
		return
	}
	update := UserUpdate{PasswordHash: &newHash}
	if err := s.users.UpdateFields(ctx, user.ID, update); err != nil {
		s.opts.logger.WarnContext(ctx, "failed to persist upgraded password hash",
			"user_id", user.ID.String(),
			"error", err)
		return
	}
	update.Apply(user, s.opts.now().UTC())
	s.opts.logger.InfoContext(ctx, "password hash upgraded", slog.String("user_id", user.ID.String()))
}

func errEmailTaken() error {
	return oops.Code(CodeEmailTaken).Errorf("user already exists")
}

func errInvalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("invalid credentials")
}
