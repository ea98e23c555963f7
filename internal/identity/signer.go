// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	SessionTokenExpiry  = 30 * 24 * time.Hour
	SessionTokenIssuer  = "jobify"
	MinSigningSecretLen = 32
)

// SessionToken is a signed credential asserting the bearer is SubjectID.
type SessionToken struct {
	Token     string    `json:"token"`
	SubjectID ulid.ULID `json:"-"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenSigner issues and verifies session tokens.
type TokenSigner interface {
	// Issue returns a token for subjectID valid for SessionTokenExpiry.
	Issue(subjectID ulid.ULID) (SessionToken, error)

	// Verify returns the subject of a valid token.
	// Bad signatures, foreign issuers and expired tokens are all SESSION_TOKEN_INVALID.
	Verify(token string) (ulid.ULID, error)
}

// JWTSigner implements TokenSigner with HS256 JSON Web Tokens.
type JWTSigner struct {
	secret []byte
	now    func() time.Time
}

// JWTSignerOption configures a JWTSigner.
type JWTSignerOption func(*JWTSigner)

// WithSignerClock overrides the signer's clock.
func WithSignerClock(now func() time.Time) JWTSignerOption {
	return func(s *JWTSigner) {
		if now != nil {
			s.now = now
		}
	}
}

// NewJWTSigner creates a JWTSigner. The secret is copied and must be at
// least MinSigningSecretLen bytes.
func NewJWTSigner(secret []byte, opts ...JWTSignerOption) (*JWTSigner, error) {
	if len(secret) < MinSigningSecretLen {
		return nil, oops.Code("SIGNER_SECRET_TOO_SHORT").
			With("length", len(secret)).
			Errorf("signing secret must be at least %d bytes", MinSigningSecretLen)
	}
	s := &JWTSigner{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a new session token for subjectID.
func (s *JWTSigner) Issue(subjectID ulid.ULID) (SessionToken, error) {
	issued := s.now().UTC().Truncate(time.Second)
	expires := issued.Add(SessionTokenExpiry)

	claims := jwt.RegisteredClaims{
		Subject:   subjectID.String(),
		Issuer:    SessionTokenIssuer,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return SessionToken{}, oops.Code("SESSION_TOKEN_SIGN_FAILED").Wrap(err)
	}

	return SessionToken{
		Token:     signed,
		SubjectID: subjectID,
		IssuedAt:  issued,
		ExpiresAt: expires,
	}, nil
}

// Verify parses token and returns its subject.
func (s *JWTSigner) Verify(token string) (ulid.ULID, error) {
	if token == "" {
		return ulid.ULID{}, oops.Code(CodeSessionInvalid).Errorf("session token cannot be empty")
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(SessionTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return ulid.ULID{}, oops.Code(CodeSessionInvalid).Errorf("invalid or expired session token")
	}

	id, err := ulid.Parse(claims.Subject)
	if err != nil {
		return ulid.ULID{}, oops.Code(CodeSessionInvalid).Errorf("invalid or expired session token")
	}
	return id, nil
}

var _ TokenSigner = (*JWTSigner)(nil)
