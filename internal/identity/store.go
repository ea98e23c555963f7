// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identity

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"
)

// UserStore persists users. Implementations own all persisted state and
// never see a raw reset token.
type UserStore interface {
	// FindByEmail returns the user whose email matches case-insensitively.
	// Returns ErrNotFound if no user matches.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID returns the user with the given ID.
	// Returns ErrNotFound if no user matches.
	FindByID(ctx context.Context, id ulid.ULID) (*User, error)

	// Insert persists a new user.
	// Returns ErrDuplicate if the email is already registered.
	Insert(ctx context.Context, user *User) error

	// UpdateFields applies update to the user in a single atomic write.
	// Returns ErrNotFound if the user does not exist, ErrDuplicate if the
	// new email collides with another user.
	UpdateFields(ctx context.Context, id ulid.ULID, update UserUpdate) error

	// DeleteByID removes a user.
	// Returns ErrNotFound if the user does not exist.
	DeleteByID(ctx context.Context, id ulid.ULID) error

	// FindByValidResetHash returns the user whose reset hash equals hash and
	// whose reset expiry is after now.
	// Returns ErrNotFound otherwise.
	FindByValidResetHash(ctx context.Context, hash string, now time.Time) (*User, error)

	// ConsumeResetToken sets the password hash and clears the reset pair,
	// but only if the user still holds hash with an expiry after now.
	// Returns ErrNotFound if the condition no longer holds.
	ConsumeResetToken(ctx context.Context, id ulid.ULID, hash, newPasswordHash string, now time.Time) error

	// List returns a page of users ordered by creation time, plus the total count.
	List(ctx context.Context, offset, limit int) ([]*User, int64, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// UserUpdate is a set of field assignments. Nil fields are left untouched.
// The reset pair is assigned through Reset or cleared through ClearReset so
// its two halves are always written together.
type UserUpdate struct {
	Username       *string
	Email          *string
	PasswordHash   *string
	Bio            *string
	JobTitle       *string
	Location       *string
	ProfileImage   *string
	ContactInfo    *ContactInfo
	SocialLinks    map[string]string
	Skills         []string
	Experience     []string
	Education      []string
	Certifications []string
	Languages      []string
	Interests      []string
	Projects       []Project
	ProfilePhoto   *ProfilePhoto

	Reset      *ResetTokenState
	ClearReset bool
}

// IsEmpty reports whether the update assigns nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.PasswordHash == nil &&
		u.Bio == nil && u.JobTitle == nil && u.Location == nil && u.ProfileImage == nil &&
		u.ContactInfo == nil && u.SocialLinks == nil &&
		u.Skills == nil && u.Experience == nil && u.Education == nil &&
		u.Certifications == nil && u.Languages == nil && u.Interests == nil &&
		u.Projects == nil && u.ProfilePhoto == nil &&
		u.Reset == nil && !u.ClearReset
}

// Apply writes the assignments in u onto user and stamps UpdatedAt.
func (u UserUpdate) Apply(user *User, now time.Time) {
	if u.Username != nil {
		user.Username = *u.Username
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
	if u.Bio != nil {
		user.Bio = *u.Bio
	}
	if u.JobTitle != nil {
		user.JobTitle = *u.JobTitle
	}
	if u.Location != nil {
		user.Location = *u.Location
	}
	if u.ProfileImage != nil {
		user.ProfileImage = *u.ProfileImage
	}
	if u.ContactInfo != nil {
		user.ContactInfo = *u.ContactInfo
	}
	if u.SocialLinks != nil {
		user.SocialLinks = u.SocialLinks
	}
	if u.Skills != nil {
		user.Skills = u.Skills
	}
	if u.Experience != nil {
		user.Experience = u.Experience
	}
	if u.Education != nil {
		user.Education = u.Education
	}
	if u.Certifications != nil {
		user.Certifications = u.Certifications
	}
	if u.Languages != nil {
		user.Languages = u.Languages
	}
	if u.Interests != nil {
		user.Interests = u.Interests
	}
	if u.Projects != nil {
		user.Projects = u.Projects
	}
	if u.ProfilePhoto != nil {
		photo := *u.ProfilePhoto
		user.ProfilePhoto = &photo
	}
	switch {
	case u.ClearReset:
		user.Reset = nil
	case u.Reset != nil:
		reset := *u.Reset
		user.Reset = &reset
	}
	user.UpdatedAt = now
}

// DiffUpdate builds the UserUpdate that turns before into after for the
// profile fields a merge can change.
func DiffUpdate(before, after *User) UserUpdate {
	var u UserUpdate
	if before.Username != after.Username {
		u.Username = &after.Username
	}
	if before.Email != after.Email {
		u.Email = &after.Email
	}
	if before.PasswordHash != after.PasswordHash {
		u.PasswordHash = &after.PasswordHash
	}
	if before.Bio != after.Bio {
		u.Bio = &after.Bio
	}
	if before.JobTitle != after.JobTitle {
		u.JobTitle = &after.JobTitle
	}
	if before.Location != after.Location {
		u.Location = &after.Location
	}
	if before.ProfileImage != after.ProfileImage {
		u.ProfileImage = &after.ProfileImage
	}
	if !contactEqual(before.ContactInfo, after.ContactInfo) {
		u.ContactInfo = &after.ContactInfo
	}
	if !maps.Equal(before.SocialLinks, after.SocialLinks) {
		u.SocialLinks = nonNilMap(after.SocialLinks)
	}
	u.Skills = changedList(before.Skills, after.Skills)
	u.Experience = changedList(before.Experience, after.Experience)
	u.Education = changedList(before.Education, after.Education)
	u.Certifications = changedList(before.Certifications, after.Certifications)
	u.Languages = changedList(before.Languages, after.Languages)
	u.Interests = changedList(before.Interests, after.Interests)
	if !slices.Equal(before.Projects, after.Projects) {
		u.Projects = after.Projects
		if u.Projects == nil {
			u.Projects = []Project{}
		}
	}
	return u
}

func changedList(before, after []string) []string {
	if slices.Equal(before, after) {
		return nil
	}
	if after == nil {
		return []string{}
	}
	return after
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func contactEqual(a, b ContactInfo) bool {
	if a.IsStructured() != b.IsStructured() {
		return false
	}
	if !a.IsStructured() {
		return a.text == b.text
	}
	// Structured values are compared by their JSON encoding; map key order
	// is sorted by encoding/json.
	aj, aErr := a.MarshalJSON()
	bj, bErr := b.MarshalJSON()
	return aErr == nil && bErr == nil && string(aj) == string(bj)
}
