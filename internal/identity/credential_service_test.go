// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identity_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hananem/Jobify-backend/internal/identity"
	"github.com/Hananem/Jobify-backend/internal/identity/identitytest"
	"github.com/Hananem/Jobify-backend/internal/identity/mocks"
	"github.com/Hananem/Jobify-backend/pkg/errutil"
)

func newSigner(t *testing.T) *identity.JWTSigner {
	t.Helper()
	s, err := identity.NewJWTSigner(testSecret)
	require.NoError(t, err)
	return s
}

func TestNewCredentialService_NilDependencies(t *testing.T) {
	tests := []struct {
		name        string
		users       identity.UserStore
		hasher      identity.PasswordHasher
		signer      identity.TokenSigner
		expectError string
	}{
		{
			name:        "nil user store",
			hasher:      mocks.NewMockPasswordHasher(t),
			signer:      mocks.NewMockTokenSigner(t),
			expectError: "user store is required",
		},
		{
			name:        "nil password hasher",
			users:       mocks.NewMockUserStore(t),
			signer:      mocks.NewMockTokenSigner(t),
			expectError: "password hasher is required",
		},
		{
			name:        "nil token signer",
			users:       mocks.NewMockUserStore(t),
			hasher:      mocks.NewMockPasswordHasher(t),
			expectError: "token signer is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := identity.NewCredentialService(tt.users, tt.hasher, tt.signer)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestCredentialService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and issues token", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		signer := mocks.NewMockTokenSigner(t)
		svc, err := identity.NewCredentialService(users, hasher, signer)
		require.NoError(t, err)

		users.On("FindByEmail", ctx, "alice@example.com").Return(nil, identity.ErrNotFound)
		hasher.On("Hash", "secret1").Return("$argon2id$hash", nil)
		users.On("Insert", ctx, mock.MatchedBy(func(u *identity.User) bool {
			return u.Username == "alice" && u.Email == "alice@example.com" && u.PasswordHash == "$argon2id$hash"
		})).Return(nil)
		signer.On("Issue", mock.AnythingOfType("ulid.ULID")).Return(identity.SessionToken{Token: "signed"}, nil)

		result, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "signed", result.Session.Token)
		assert.Equal(t, "alice", result.User.Username)
	})

	t.Run("existing email is a conflict", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		svc, err := identity.NewCredentialService(users, mocks.NewMockPasswordHasher(t), mocks.NewMockTokenSigner(t))
		require.NoError(t, err)

		users.On("FindByEmail", ctx, "alice@example.com").Return(&identity.User{ID: ulid.Make()}, nil)

		result, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
		require.Error(t, err)
		assert.Nil(t, result)
		errutil.AssertErrorCode(t, err, identity.CodeEmailTaken)
		assert.Equal(t, identity.KindConflict, identity.KindOf(err))
	})

	t.Run("insert race is a conflict", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := identity.NewCredentialService(users, hasher, mocks.NewMockTokenSigner(t))
		require.NoError(t, err)

		users.On("FindByEmail", ctx, "alice@example.com").Return(nil, identity.ErrNotFound)
		hasher.On("Hash", "secret1").Return("$argon2id$hash", nil)
		users.On("Insert", ctx, mock.Anything).Return(identity.ErrDuplicate)

		_, err = svc.Register(ctx, "alice", "alice@example.com", "secret1")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, identity.CodeEmailTaken)
	})

	t.Run("store failure is internal", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		svc, err := identity.NewCredentialService(users, mocks.NewMockPasswordHasher(t), mocks.NewMockTokenSigner(t))
		require.NoError(t, err)

		users.On("FindByEmail", ctx, "alice@example.com").Return(nil, errors.New("connection reset"))

		_, err = svc.Register(ctx, "alice", "alice@example.com", "secret1")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "USER_REGISTER_FAILED")
		assert.Equal(t, identity.KindInternal, identity.KindOf(err))
		assert.Equal(t, "internal server error", identity.PublicMessage(err))
	})

	t.Run("empty password is a validation failure", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		svc, err := identity.NewCredentialService(users, identitytest.FastHasher(), mocks.NewMockTokenSigner(t))
		require.NoError(t, err)

		users.On("FindByEmail", ctx, "alice@example.com").Return(nil, identity.ErrNotFound)

		_, err = svc.Register(ctx, "alice", "alice@example.com", "")
		require.Error(t, err)
		assert.Equal(t, identity.KindValidationFailed, identity.KindOf(err))
	})

	t.Run("invalid email is a validation failure", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := identity.NewCredentialService(users, hasher, mocks.NewMockTokenSigner(t))
		require.NoError(t, err)

		users.On("FindByEmail", ctx, "nope").Return(nil, identity.ErrNotFound)
		hasher.On("Hash", "secret1").Return("$argon2id$hash", nil)

		_, err = svc.Register(ctx, "alice", "nope", "secret1")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, identity.CodeInvalidUser)
	})
}

func TestCredentialService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email verifies against dummy hash", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := identity.NewCredentialService(users, hasher, mocks.NewMockTokenSigner(t))
		require.NoError(t, err)

		users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, identity.ErrNotFound)
		hasher.On("Verify", "secret1", mock.AnythingOfType("string")).Return(false, nil)

		result, err := svc.Login(ctx, "ghost@example.com", "secret1")
		require.Error(t, err)
		assert.Nil(t, result)
		errutil.AssertErrorCode(t, err, identity.CodeInvalidCredentials)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		store := identitytest.NewMemoryStore()
		svc, err := identity.NewCredentialService(store, identitytest.FastHasher(), newSigner(t))
		require.NoError(t, err)

		_, err = svc.Register(ctx, "alice", "alice@example.com", "secret1")
		require.NoError(t, err)

		_, wrongPw := svc.Login(ctx, "alice@example.com", "wrong")
		_, unknown := svc.Login(ctx, "bob@example.com", "secret1")
		require.Error(t, wrongPw)
		require.Error(t, unknown)
		assert.Equal(t, identity.KindOf(wrongPw), identity.KindOf(unknown))
		assert.Equal(t, identity.PublicMessage(wrongPw), identity.PublicMessage(unknown))
		assert.Equal(t, wrongPw.Error(), unknown.Error())
	})

	t.Run("verify error on real user is internal", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := identity.NewCredentialService(users, hasher, mocks.NewMockTokenSigner(t))
		require.NoError(t, err)

		user := &identity.User{ID: ulid.Make(), PasswordHash: "garbage"}
		users.On("FindByEmail", ctx, "alice@example.com").Return(user, nil)
		hasher.On("Verify", "secret1", "garbage").Return(false, errors.New("bad digest"))

		_, err = svc.Login(ctx, "alice@example.com", "secret1")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_LOGIN_FAILED")
	})

	t.Run("legacy digest is upgraded", func(t *testing.T) {
		store := identitytest.NewMemoryStore()
		hasher := identitytest.FastHasher()
		svc, err := identity.NewCredentialService(store, hasher, newSigner(t))
		require.NoError(t, err)

		legacy, err := bcrypt.GenerateFromPassword([]byte("oldsecret"), bcrypt.MinCost)
		require.NoError(t, err)
		user, err := identity.NewUser("legacy", "legacy@example.com", string(legacy))
		require.NoError(t, err)
		store.Put(user)

		result, err := svc.Login(ctx, "legacy@example.com", "oldsecret")
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)

		stored, err := store.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, hasher.NeedsUpgrade(stored.PasswordHash))

		_, err = svc.Login(ctx, "legacy@example.com", "oldsecret")
		require.NoError(t, err)
	})

	t.Run("failed upgrade still logs in", func(t *testing.T) {
		users := mocks.NewMockUserStore(t)
		hasher := mocks.NewMockPasswordHasher(t)
		signer := mocks.NewMockTokenSigner(t)
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		svc, err := identity.NewCredentialService(users, hasher, signer, identity.WithLogger(logger))
		require.NoError(t, err)

		user := &identity.User{ID: ulid.Make(), PasswordHash: "$2a$legacy"}
		users.On("FindByEmail", ctx, "alice@example.com").Return(user, nil)
		hasher.On("Verify", "secret1", "$2a$legacy").Return(true, nil)
		hasher.On("NeedsUpgrade", "$2a$legacy").Return(true)
		hasher.On("Hash", "secret1").Return("$argon2id$new", nil)
		users.On("UpdateFields", ctx, user.ID, mock.AnythingOfType("identity.UserUpdate")).Return(errors.New("db down"))
		signer.On("Issue", user.ID).Return(identity.SessionToken{Token: "signed", SubjectID: user.ID}, nil)

		result, err := svc.Login(ctx, "alice@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "signed", result.Session.Token)
		assert.Contains(t, buf.String(), "failed to persist upgraded password hash")
		assert.NotContains(t, buf.String(), "secret1")
	})
}

func TestCredentialService_LoginSucceedsIffPasswordMatches(t *testing.T) {
	ctx := context.Background()
	store := identitytest.NewMemoryStore()
	hasher := identitytest.FastHasher()
	signer := newSigner(t)
	svc, err := identity.NewCredentialService(store, hasher, signer)
	require.NoError(t, err)

	reg, err := svc.Register(ctx, "alice", "Alice@Example.com", "first-pass")
	require.NoError(t, err)

	subject, err := signer.Verify(reg.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, subject)
	assert.WithinDuration(t, time.Now().Add(identity.SessionTokenExpiry), reg.Session.ExpiresAt, time.Minute)

	_, err = svc.Register(ctx, "alice2", "alice@example.com", "other")
	errutil.AssertErrorCode(t, err, identity.CodeEmailTaken)

	login, err := svc.Login(ctx, "alice@example.com", "first-pass")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	for _, pw := range []string{"", "first-pas", "First-pass", "first-pass "} {
		_, err := svc.Login(ctx, "alice@example.com", pw)
		require.Error(t, err, "password %q", pw)
		errutil.AssertErrorCode(t, err, identity.CodeInvalidCredentials)
	}
}

func TestCredentialService_RecordsEvents(t *testing.T) {
	ctx := context.Background()
	events := &identitytest.EventLog{}
	svc, err := identity.NewCredentialService(identitytest.NewMemoryStore(), identitytest.FastHasher(), newSigner(t),
		identity.WithEventRecorder(events))
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "alice@example.com", "pw123456")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "alice", "alice@example.com", "pw123456")
	require.Error(t, err)
	_, err = svc.Login(ctx, "alice@example.com", "nope")
	require.Error(t, err)

	assert.Equal(t, []string{
		"register:ok",
		"register:Conflict",
		"login:InvalidCredentials",
	}, events.Events())
}
