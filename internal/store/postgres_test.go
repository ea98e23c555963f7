// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hananem/Jobify-backend/pkg/errutil"
)

func TestPoolOptions_Defaults(t *testing.T) {
	opts := PoolOptions{}.withDefaults()
	assert.Equal(t, uint64(DefaultConnectAttempts), opts.Attempts)
	assert.Equal(t, DefaultRetryBase, opts.RetryBase)
	assert.Equal(t, DefaultRetryCap, opts.RetryCap)
	assert.NotNil(t, opts.Logger)

	custom := PoolOptions{Attempts: 2, RetryBase: time.Second}.withDefaults()
	assert.Equal(t, uint64(2), custom.Attempts)
	assert.Equal(t, time.Second, custom.RetryBase)
}

func TestConnect_InvalidDSN(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz", PoolOptions{})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DB_CONFIG_INVALID")
}

func TestConnect_GivesUpAfterAttempts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := Connect(ctx, "postgres://jobify@127.0.0.1:1/jobify?connect_timeout=1", PoolOptions{
		Attempts:  2,
		RetryBase: time.Millisecond,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DB_CONNECT_FAILED")
	errutil.AssertErrorContext(t, err, "attempts", 2)
}
