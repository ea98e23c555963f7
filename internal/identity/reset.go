// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// Reset token configuration.
const (
	ResetTokenBytes  = 32        // 32 bytes = 64 hex chars
	ResetTokenExpiry = time.Hour // 1 hour expiry
)

// ResetToken is a freshly generated password-reset token. Raw is handed to
// the user once; only Hash and ExpiresAt are ever persisted.
type ResetToken struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}

// State returns the persistable half of the token.
func (t ResetToken) State() ResetTokenState {
	return ResetTokenState{Hash: t.Hash, ExpiresAt: t.ExpiresAt}
}

// LogValue keeps the raw token out of logs.
func (t ResetToken) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("hash_prefix", hashPrefix(t.Hash)),
		slog.Time("expires_at", t.ExpiresAt),
	)
}

// ResetTokenCodec generates reset tokens and derives their lookup hash.
type ResetTokenCodec struct {
	expiry time.Duration
	now    func() time.Time
}

// ResetTokenCodecOption configures a ResetTokenCodec.
type ResetTokenCodecOption func(*ResetTokenCodec)

// WithResetExpiry overrides ResetTokenExpiry.
func WithResetExpiry(d time.Duration) ResetTokenCodecOption {
	return func(c *ResetTokenCodec) {
		if d > 0 {
			c.expiry = d
		}
	}
}

// WithCodecClock overrides the codec's clock.
func WithCodecClock(now func() time.Time) ResetTokenCodecOption {
	return func(c *ResetTokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewResetTokenCodec creates a ResetTokenCodec.
func NewResetTokenCodec(opts ...ResetTokenCodecOption) *ResetTokenCodec {
	c := &ResetTokenCodec{expiry: ResetTokenExpiry, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Expiry returns how long generated tokens stay valid.
func (c *ResetTokenCodec) Expiry() time.Duration {
	return c.expiry
}

// Generate creates a secure random token, its hash and its expiry.
func (c *ResetTokenCodec) Generate() (ResetToken, error) {
	raw := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return ResetToken{}, oops.Code("RESET_TOKEN_GENERATE_FAILED").Wrap(err)
	}

	token := hex.EncodeToString(raw)
	return ResetToken{
		Raw:       token,
		Hash:      c.HashOf(token),
		ExpiresAt: c.now().UTC().Add(c.expiry),
	}, nil
}

// HashOf returns the hex SHA-256 digest of a raw token.
func (c *ResetTokenCodec) HashOf(raw string) string {
	return HashResetToken(raw)
}

// HashResetToken returns the hex SHA-256 digest of a raw token.
func HashResetToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

func hashPrefix(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
