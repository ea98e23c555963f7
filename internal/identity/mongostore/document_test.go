// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package mongostore

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

func roundTrip(t *testing.T, u *identity.User) *identity.User {
	t.Helper()
	raw, err := bson.Marshal(toDocument(u))
	require.NoError(t, err)

	var doc userDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	out, err := doc.toUser()
	require.NoError(t, err)
	return out
}

func TestToDocument_NormalizesEmailForLookup(t *testing.T) {
	u, err := identity.NewUser("ada", " Ada@Example.COM ", "hash")
	require.NoError(t, err)

	doc := toDocument(u).Map()
	assert.Equal(t, "Ada@Example.COM", doc["email"])
	assert.Equal(t, "ada@example.com", doc["email_normalized"])
	assert.NotContains(t, doc, "reset_token_hash")
	assert.NotContains(t, doc, "profile_photo")
}

func TestDocument_ContactInfoVariants(t *testing.T) {
	base, err := identity.NewUser("ada", "ada@example.com", "hash")
	require.NoError(t, err)

	t.Run("text", func(t *testing.T) {
		u := base.Clone()
		u.ContactInfo = identity.ContactText("call me")
		got := roundTrip(t, u)
		assert.False(t, got.ContactInfo.IsStructured())
		assert.Equal(t, "call me", got.ContactInfo.Text())
	})

	t.Run("structured", func(t *testing.T) {
		u := base.Clone()
		u.ContactInfo = identity.ContactStructured(map[string]any{"phone": "555", "email": "a@b.co"})
		got := roundTrip(t, u)
		require.True(t, got.ContactInfo.IsStructured())
		assert.Equal(t, "555", got.ContactInfo.Fields()["phone"])
	})

	t.Run("missing field", func(t *testing.T) {
		c, err := contactFromRaw(bson.RawValue{})
		require.NoError(t, err)
		assert.True(t, c.IsZero())
	})
}

func TestDocument_CarriesResetPhotoAndProjects(t *testing.T) {
	u, err := identity.NewUser("ada", "ada@example.com", "hash")
	require.NoError(t, err)
	expires := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	projectID := ulid.Make()
	u.Reset = &identity.ResetTokenState{Hash: "abc", ExpiresAt: expires}
	u.ProfilePhoto = &identity.ProfilePhoto{URL: "https://img/1.png", ExternalID: "img-1"}
	u.Projects = []identity.Project{{ID: projectID, Title: "Compiler"}}
	u.Skills = []string{"go"}

	got := roundTrip(t, u)
	require.NotNil(t, got.Reset)
	assert.Equal(t, "abc", got.Reset.Hash)
	assert.True(t, got.Reset.ExpiresAt.Equal(expires))
	require.NotNil(t, got.ProfilePhoto)
	assert.Equal(t, "img-1", got.ProfilePhoto.ExternalID)
	require.Len(t, got.Projects, 1)
	assert.Equal(t, projectID, got.Projects[0].ID)
	assert.Equal(t, []string{"go"}, got.Skills)
}

func TestToUser_RejectsCorruptID(t *testing.T) {
	_, err := (&userDocument{ID: "nope"}).toUser()
	require.Error(t, err)
}

func TestUpdateDocument(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("email also updates the lookup key", func(t *testing.T) {
		email := "New@Example.com"
		update := updateDocument(identity.UserUpdate{Email: &email}, now)
		set := update["$set"].(bson.M)
		assert.Equal(t, email, set["email"])
		assert.Equal(t, "new@example.com", set["email_normalized"])
		assert.Equal(t, now, set["updated_at"])
		assert.NotContains(t, update, "$unset")
	})

	t.Run("reset pair is set together", func(t *testing.T) {
		update := updateDocument(identity.UserUpdate{
			Reset: &identity.ResetTokenState{Hash: "h", ExpiresAt: now.Add(time.Hour)},
		}, now)
		set := update["$set"].(bson.M)
		assert.Equal(t, "h", set["reset_token_hash"])
		assert.Equal(t, now.Add(time.Hour), set["reset_token_expires_at"])
	})

	t.Run("clearing unsets both halves", func(t *testing.T) {
		hash := "new"
		update := updateDocument(identity.UserUpdate{PasswordHash: &hash, ClearReset: true}, now)
		assert.Equal(t, bson.M{"reset_token_hash": "", "reset_token_expires_at": ""}, update["$unset"])
		assert.Equal(t, "new", update["$set"].(bson.M)["password_hash"])
	})

	t.Run("structured contact info is a sub-document", func(t *testing.T) {
		contact := identity.ContactStructured(map[string]any{"phone": "555"})
		update := updateDocument(identity.UserUpdate{ContactInfo: &contact}, now)
		assert.Equal(t, bson.M{"phone": "555"}, update["$set"].(bson.M)["contact_info"])
	})
}
