// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

// Package store owns the PostgreSQL connection pool and the embedded schema migrations.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Default connection settings.
const (
	DefaultConnectAttempts = 5
	DefaultRetryBase       = 250 * time.Millisecond
	DefaultRetryCap        = 5 * time.Second
)

// PoolOptions tunes Connect.
type PoolOptions struct {
	// MaxConns caps the pool size. Zero keeps the pgxpool default.
	MaxConns int32
	// Attempts is the total number of connection attempts, including the first.
	Attempts uint64
	// RetryBase is the first backoff interval; later intervals double up to RetryCap.
	RetryBase time.Duration
	RetryCap  time.Duration
	Logger    *slog.Logger
}

func (o PoolOptions) withDefaults() PoolOptions {
	if o.Attempts == 0 {
		o.Attempts = DefaultConnectAttempts
	}
	if o.RetryBase <= 0 {
		o.RetryBase = DefaultRetryBase
	}
	if o.RetryCap <= 0 {
		o.RetryCap = DefaultRetryCap
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Connect parses dsn, opens a pool and pings it, retrying the ping with
// capped exponential backoff while the database comes up. A malformed DSN
// fails immediately.
func Connect(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	opts = opts.withDefaults()

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("operation", "parse database url").Wrap(err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	backoff := retry.WithMaxRetries(opts.Attempts-1,
		retry.WithCappedDuration(opts.RetryCap, retry.NewExponential(opts.RetryBase)))

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if pingErr := pool.Ping(ctx); pingErr != nil {
			opts.Logger.WarnContext(ctx, "database not ready",
				"attempt", attempt,
				"max_attempts", opts.Attempts,
				"error", pingErr)
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping database").
			With("attempts", attempt).
			Wrap(err)
	}
	return pool, nil
}
