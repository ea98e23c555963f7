// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identity

import (
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

type options struct {
	logger   *slog.Logger
	recorder EventRecorder
	now      func() time.Time
	newID    func() ulid.ULID
	throttle ResetThrottle
}

// Option configures a service.
type Option func(*options)

// WithLogger sets the service logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventRecorder reports operation outcomes to r.
func WithEventRecorder(r EventRecorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides how new project IDs are minted.
func WithIDGenerator(newID func() ulid.ULID) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// WithResetThrottle limits reset requests per email. Only RecoveryFlow uses it.
func WithResetThrottle(t ResetThrottle) Option {
	return func(o *options) {
		o.throttle = t
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   slog.Default(),
		recorder: nopRecorder{},
		now:      time.Now,
		newID:    ulid.Make,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
