// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package errutil

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that err is an oops error carrying code, such as
// identity.CodeEmailTaken or a component code like "DB_PING_FAILED". The
// code drives the HTTP status, so tests pin it rather than the message.
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	_, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	assert.Equal(t, code, Code(err))
}

// AssertErrorContext asserts that err is an oops error with the given context
// key/value, for example "operation" on store and migration failures.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	ctx := oopsErr.Context()
	assert.Contains(t, ctx, key)
	assert.Equal(t, value, ctx[key])
}

// AssertErrorCause asserts that err carries code and still unwraps to cause.
func AssertErrorCause(t *testing.T, err error, code string, cause error) {
	t.Helper()
	AssertErrorCode(t, err, code)
	assert.True(t, errors.Is(err, cause), "expected %v to wrap %v", err, cause)
}
