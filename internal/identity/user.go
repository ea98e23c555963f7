// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identity

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username constraints.
const (
	MinUsernameLength = 1
	MaxUsernameLength = 64
)

// User is the identity record of a platform member.
type User struct {
	ID           ulid.ULID         `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"-"`
	IsAdmin      bool              `json:"isAdmin"`
	Bio          string            `json:"bio,omitempty"`
	JobTitle     string            `json:"jobTitle,omitempty"`
	Location     string            `json:"location,omitempty"`
	ProfileImage string            `json:"profileImage,omitempty"`
	ContactInfo  ContactInfo       `json:"contactInfo"`
	SocialLinks  map[string]string `json:"socialLinks,omitempty"`

	Skills         []string `json:"skills"`
	Experience     []string `json:"experience"`
	Education      []string `json:"education"`
	Certifications []string `json:"certifications"`
	Languages      []string `json:"languages"`
	Interests      []string `json:"interests"`

	Projects     []Project     `json:"projects"`
	ProfilePhoto *ProfilePhoto `json:"profilePhoto,omitempty"`

	// Reset holds the pending password-reset pair. Nil means no reset is pending.
	Reset *ResetTokenState `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Project is an entry in a user's portfolio.
type Project struct {
	ID          ulid.ULID `json:"id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
}

// ProfilePhoto references an image held by the ImageStore.
type ProfilePhoto struct {
	URL        string `json:"url"`
	ExternalID string `json:"publicId"`
}

// ResetTokenState is the persisted half of a password reset: the hash of the
// raw token and the instant it stops being valid.
type ResetTokenState struct {
	Hash      string
	ExpiresAt time.Time
}

// ValidAt reports whether the reset pair is still usable at now.
func (s *ResetTokenState) ValidAt(now time.Time) bool {
	return s != nil && s.Hash != "" && s.ExpiresAt.After(now)
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	out := *u
	out.SocialLinks = maps.Clone(u.SocialLinks)
	out.Skills = slices.Clone(u.Skills)
	out.Experience = slices.Clone(u.Experience)
	out.Education = slices.Clone(u.Education)
	out.Certifications = slices.Clone(u.Certifications)
	out.Languages = slices.Clone(u.Languages)
	out.Interests = slices.Clone(u.Interests)
	out.Projects = slices.Clone(u.Projects)
	if u.ContactInfo.IsStructured() {
		out.ContactInfo = ContactStructured(maps.Clone(u.ContactInfo.Fields()))
	}
	if u.ProfilePhoto != nil {
		photo := *u.ProfilePhoto
		out.ProfilePhoto = &photo
	}
	if u.Reset != nil {
		reset := *u.Reset
		out.Reset = &reset
	}
	return &out
}

// NewUser creates a validated User with a fresh ID. The password must
// already be hashed.
func NewUser(username, email, passwordHash string) (*User, error) {
	username = strings.TrimSpace(username)
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return nil, oops.Code(CodeInvalidUser).
			With("length", len(username)).
			Errorf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength)
	}
	email = strings.TrimSpace(email)
	if !LooksLikeEmail(email) {
		return nil, oops.Code(CodeInvalidUser).Errorf("email address is not valid")
	}
	if passwordHash == "" {
		return nil, oops.Code(CodeInvalidUser).Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		ID:           ulid.Make(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NormalizeEmail returns the form of an address used for lookups.
// Addresses are stored as given and compared case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LooksLikeEmail performs a shallow shape check: one "@" with a non-empty
// local part and a dotted domain.
func LooksLikeEmail(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	domain := email[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// ContactInfo is either free text or a structured set of key/value pairs.
// The zero value is empty text.
type ContactInfo struct {
	text       string
	structured map[string]any
}

// ContactText returns a textual ContactInfo.
func ContactText(text string) ContactInfo {
	return ContactInfo{text: text}
}

// ContactStructured returns a structured ContactInfo.
func ContactStructured(fields map[string]any) ContactInfo {
	return ContactInfo{structured: fields}
}

// IsStructured reports whether c holds structured data.
func (c ContactInfo) IsStructured() bool {
	return c.structured != nil
}

// Text returns the textual value. It is empty for structured contact info.
func (c ContactInfo) Text() string {
	return c.text
}

// Fields returns the structured value, or nil for textual contact info.
func (c ContactInfo) Fields() map[string]any {
	return c.structured
}

// IsZero reports whether c carries no information.
func (c ContactInfo) IsZero() bool {
	return c.text == "" && len(c.structured) == 0
}

// MarshalJSON encodes text as a JSON string and structured data as an object.
func (c ContactInfo) MarshalJSON() ([]byte, error) {
	if c.structured != nil {
		return json.Marshal(c.structured)
	}
	return json.Marshal(c.text)
}

// UnmarshalJSON accepts a JSON string, object or null.
func (c *ContactInfo) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*c = ContactInfo{}
		return nil
	case strings.HasPrefix(trimmed, "\""):
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return oops.Code(CodeInvalidPatch).Wrap(err)
		}
		*c = ContactText(text)
		return nil
	case strings.HasPrefix(trimmed, "{"):
		fields := map[string]any{}
		if err := json.Unmarshal(data, &fields); err != nil {
			return oops.Code(CodeInvalidPatch).Wrap(err)
		}
		*c = ContactStructured(fields)
		return nil
	default:
		return oops.Code(CodeInvalidPatch).Errorf("contactInfo must be a string or an object")
	}
}
