// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identity

import (
	"errors"

	"github.com/samber/oops"

	"github.com/Hananem/Jobify-backend/pkg/errutil"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by stores when a unique constraint (email) is violated.
var ErrDuplicate = errors.New("duplicate")

// Kind is the externally visible classification of an error.
type Kind string

// Error kinds.
const (
	KindConflict           Kind = "Conflict"
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindNotFound           Kind = "NotFound"
	KindInvalidOrExpired   Kind = "InvalidOrExpired"
	KindValidationFailed   Kind = "ValidationFailed"
	KindRateLimited        Kind = "RateLimited"
	KindInternal           Kind = "Internal"
)

// Error codes with a stable external meaning.
const (
	CodeEmailTaken         = "USER_EMAIL_TAKEN"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeSessionInvalid     = "SESSION_TOKEN_INVALID"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeResetTokenInvalid  = "RESET_TOKEN_INVALID"
	CodeResetThrottled     = "RESET_THROTTLED"
	CodeResetNotifyFailed  = "RESET_NOTIFY_FAILED"
	CodeEmptyPassword      = "AUTH_EMPTY_PASSWORD"
	CodeInvalidUser        = "USER_INVALID"
	CodeInvalidPatch       = "PATCH_INVALID"
	CodeImageStoreDisabled = "IMAGE_STORE_DISABLED"
)

type codeInfo struct {
	kind    Kind
	message string
}

var codeKinds = map[string]codeInfo{
	CodeEmailTaken:         {KindConflict, "user already exists"},
	CodeResetNotifyFailed:  {KindConflict, "password reset link could not be sent"},
	CodeInvalidCredentials: {KindInvalidCredentials, "invalid credentials"},
	CodeSessionInvalid:     {KindInvalidCredentials, "invalid or expired session"},
	CodeUserNotFound:       {KindNotFound, "user not found"},
	CodeResetTokenInvalid:  {KindInvalidOrExpired, "invalid or expired reset token"},
	CodeResetThrottled:     {KindRateLimited, "too many password reset requests"},
	CodeEmptyPassword:      {KindValidationFailed, "password cannot be empty"},
	CodeInvalidUser:        {KindValidationFailed, "invalid user"},
	CodeInvalidPatch:       {KindValidationFailed, "invalid update payload"},
}

// KindOf classifies err. Errors without a recognised code are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if info, ok := lookupCode(err); ok {
		return info.kind
	}
	return KindInternal
}

// PublicMessage returns a human-readable message that is safe to show to
// callers. Internal details are never included; validation failures carry
// their own message because it describes the caller's input.
func PublicMessage(err error) string {
	info, ok := lookupCode(err)
	if !ok {
		return "internal server error"
	}
	if info.kind == KindValidationFailed {
		if oopsErr, isOops := oops.AsOops(err); isOops && oopsErr.Error() != "" {
			return oopsErr.Error()
		}
	}
	return info.message
}

// ErrorCode returns the oops code of err, or "" when it carries none.
func ErrorCode(err error) string {
	return errutil.Code(err)
}

func lookupCode(err error) (codeInfo, bool) {
	info, ok := codeKinds[ErrorCode(err)]
	return info, ok
}
