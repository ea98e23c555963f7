// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package notify

import (
	"context"
	"log/slog"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

// Log writes messages to a logger instead of sending them. Used in
// development when no SMTP relay is configured.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a Log notifier.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

// Send logs the message at info level.
func (l *Log) Send(ctx context.Context, to, subject, htmlBody string) error {
	l.logger.InfoContext(ctx, "outbound mail",
		"to", to,
		"subject", subject,
		"body", htmlBody)
	return nil
}

var _ identity.Notifier = (*Log)(nil)
