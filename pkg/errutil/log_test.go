// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hananem/Jobify-backend/pkg/errutil"
)

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("USER_UPDATE_FAILED").
		With("user_id", "01J0000000000000000000000").
		Errorf("write failed")

	errutil.LogError(logger, "update failed", err)

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Equal(t, "update failed", logEntry["msg"])
	assert.Equal(t, "USER_UPDATE_FAILED", logEntry["code"])
	assert.Contains(t, logEntry, "context")
}

func TestLogErrorContext_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogErrorContext(context.Background(), logger, "operation failed", errors.New("standard error"))

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "ERROR", logEntry["level"])
	assert.Contains(t, logEntry["error"], "standard error")
	assert.NotContains(t, logEntry, "code")
}

func TestCode(t *testing.T) {
	assert.Equal(t, "", errutil.Code(nil))
	assert.Equal(t, "", errutil.Code(errors.New("plain")))
	assert.Equal(t, "RESET_TOKEN_INVALID", errutil.Code(oops.Code("RESET_TOKEN_INVALID").Errorf("bad token")))

	wrapped := oops.Code("RESET_PASSWORD_FAILED").Wrap(oops.Code("DB_DOWN").Errorf("connection refused"))
	assert.NotEmpty(t, errutil.Code(wrapped))
}
