// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"
)

// RecoveryFlow runs the password-reset protocol: request a token by email,
// check it, and consume it to set a new password.
type RecoveryFlow struct {
	users    UserStore
	hasher   PasswordHasher
	codec    *ResetTokenCodec
	notifier Notifier
	mail     *RecoveryMail
	opts     options
}

// NewRecoveryFlow creates a RecoveryFlow. Reset links point at
// {frontendURL}/reset-password/{token}.
func NewRecoveryFlow(
	users UserStore,
	hasher PasswordHasher,
	codec *ResetTokenCodec,
	notifier Notifier,
	frontendURL string,
	opts ...Option,
) (*RecoveryFlow, error) {
	if users == nil {
		return nil, oops.Errorf("user store is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if codec == nil {
		return nil, oops.Errorf("reset token codec is required")
	}
	if notifier == nil {
		return nil, oops.Errorf("notifier is required")
	}
	mail, err := NewRecoveryMail(frontendURL)
	if err != nil {
		return nil, err
	}
	return &RecoveryFlow{
		users:    users,
		hasher:   hasher,
		codec:    codec,
		notifier: notifier,
		mail:     mail,
		opts:     buildOptions(opts),
	}, nil
}

// RequestReset stores a fresh reset pair on the user and mails the raw token.
// Returns USER_NOT_FOUND for unknown emails, RESET_THROTTLED when the
// throttle rejects the request and RESET_NOTIFY_FAILED when mail delivery fails.
func (f *RecoveryFlow) RequestReset(ctx context.Context, email string) (err error) {
	defer func() { f.opts.recorder.RecordEvent(EventResetRequest, outcomeOf(err)) }()

	if f.opts.throttle != nil {
		allowed, throttleErr := f.opts.throttle.Allow(ctx, NormalizeEmail(email))
		switch {
		case throttleErr != nil:
			f.opts.logger.WarnContext(ctx, "reset throttle unavailable, allowing request", "error", throttleErr)
		case !allowed:
			return oops.Code(CodeResetThrottled).Errorf("too many password reset requests")
		}
	}

	user, err := f.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return errUserNotFound()
		}
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "find by email").
			Wrap(err)
	}

	token, err := f.codec.Generate()
	if err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "generate reset token").
			Wrap(err)
	}

	state := token.State()
	if err := f.users.UpdateFields(ctx, user.ID, UserUpdate{Reset: &state}); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errUserNotFound()
		}
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "store reset token").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	subject, body, err := f.mail.Render(token.Raw)
	if err != nil {
		f.clearReset(ctx, user)
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "render recovery mail").
			Wrap(err)
	}

	if err := f.notifier.Send(ctx, user.Email, subject, body); err != nil {
		f.opts.logger.WarnContext(ctx, "recovery mail delivery failed",
			"user_id", user.ID.String(),
			"error", err)
		f.clearReset(ctx, user)
		return oops.Code(CodeResetNotifyFailed).
			With("user_id", user.ID.String()).
			Errorf("password reset link could not be sent")
	}

	f.opts.logger.InfoContext(ctx, "password reset requested",
		"user_id", user.ID.String(),
		"token", token)
	return nil
}

// CheckToken reports whether raw is a pending, unexpired reset token.
// Unknown and expired tokens both return RESET_TOKEN_INVALID.
func (f *RecoveryFlow) CheckToken(ctx context.Context, raw string) error {
	_, err := f.lookup(ctx, raw)
	return err
}

// ResetPassword consumes raw and sets newPassword. The token is cleared in
// the same conditional write that stores the new hash, so at most one
// concurrent caller succeeds.
func (f *RecoveryFlow) ResetPassword(ctx context.Context, raw, newPassword string) (err error) {
	defer func() { f.opts.recorder.RecordEvent(EventResetComplete, outcomeOf(err)) }()

	user, err := f.lookup(ctx, raw)
	if err != nil {
		return err
	}

	newHash, err := f.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, ErrEmptyPassword) {
			return oops.Code(CodeEmptyPassword).Errorf("password cannot be empty")
		}
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	hash := f.codec.HashOf(strings.TrimSpace(raw))
	if err := f.users.ConsumeResetToken(ctx, user.ID, hash, newHash, f.opts.now().UTC()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errResetTokenInvalid()
		}
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "consume reset token").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	f.opts.logger.InfoContext(ctx, "password reset completed", "user_id", user.ID.String())
	return nil
}

func (f *RecoveryFlow) lookup(ctx context.Context, raw string) (*User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errResetTokenInvalid()
	}
	user, err := f.users.FindByValidResetHash(ctx, f.codec.HashOf(raw), f.opts.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errResetTokenInvalid()
		}
		return nil, oops.Code("RESET_VALIDATE_FAILED").
			With("operation", "find by reset hash").
			Wrap(err)
	}
	return user, nil
}

func (f *RecoveryFlow) clearReset(ctx context.Context, user *User) {
	if err := f.users.UpdateFields(ctx, user.ID, UserUpdate{ClearReset: true}); err != nil {
		f.opts.logger.WarnContext(ctx, "failed to clear reset token",
			"user_id", user.ID.String(),
			"error", err)
	}
}

func errUserNotFound() error {
	return oops.Code(CodeUserNotFound).Errorf("user not found")
}

func errResetTokenInvalid() error {
	return oops.Code(CodeResetTokenInvalid).Errorf("invalid or expired reset token")
}
