// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

// Package throttle implements fixed-window counters for identity.ResetThrottle.
package throttle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

// Defaults for password reset requests.
const (
	DefaultLimit  = 5
	DefaultWindow = 15 * time.Minute
)

// counter increments key and reports the count within the current window.
type counter interface {
	incr(ctx context.Context, key string) (int64, error)
}

// Limiter allows at most Limit calls per key in each Window.
type Limiter struct {
	counter counter
	prefix  string
	limit   int64
}

// Allow records one attempt for key. Keys are hashed so raw email
// addresses never reach the backing store.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	sum := sha256.Sum256([]byte(key))
	n, err := l.counter.incr(ctx, l.prefix+hex.EncodeToString(sum[:]))
	if err != nil {
		return false, err
	}
	return n <= l.limit, nil
}

// NewRedis returns a Limiter backed by Redis INCR with a window TTL set on first use.
func NewRedis(client redis.UniversalClient, prefix string, limit int, window time.Duration) *Limiter {
	limit, window = normalize(limit, window)
	return &Limiter{
		counter: &redisCounter{client: client, window: window},
		prefix:  prefix,
		limit:   int64(limit),
	}
}

// NewMemory returns a process-local Limiter.
func NewMemory(limit int, window time.Duration) *Limiter {
	limit, window = normalize(limit, window)
	return &Limiter{
		counter: &memoryCounter{window: window, now: time.Now, entries: map[string]*memoryEntry{}},
		limit:   int64(limit),
	}
}

func normalize(limit int, window time.Duration) (int, time.Duration) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return limit, window
}

type redisCounter struct {
	client redis.UniversalClient
	window time.Duration
}

func (c *redisCounter) incr(ctx context.Context, key string) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, c.window)
		return nil
	})
	if err != nil {
		return 0, oops.Code("THROTTLE_UNAVAILABLE").With("backend", "redis").Wrap(err)
	}
	return incr.Val(), nil
}

type memoryEntry struct {
	count   int64
	resetAt time.Time
}

type memoryCounter struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	entries map[string]*memoryEntry
}

func (c *memoryCounter) incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.resetAt) {
			delete(c.entries, k)
		}
	}
	e, ok := c.entries[key]
	if !ok {
		e = &memoryEntry{resetAt: now.Add(c.window)}
		c.entries[key] = e
	}
	e.count++
	return e.count, nil
}

var _ identity.ResetThrottle = (*Limiter)(nil)
