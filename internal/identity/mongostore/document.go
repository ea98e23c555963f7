// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package mongostore

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

// userDocument is the stored shape of an identity.User.
type userDocument struct {
	ID              string            `bson:"_id"`
	Username        string            `bson:"username"`
	Email           string            `bson:"email"`
	EmailNormalized string            `bson:"email_normalized"`
	PasswordHash    string            `bson:"password_hash"`
	IsAdmin         bool              `bson:"is_admin"`
	Bio             string            `bson:"bio"`
	JobTitle        string            `bson:"job_title"`
	Location        string            `bson:"location"`
	ProfileImage    string            `bson:"profile_image"`
	ContactInfo     bson.RawValue     `bson:"contact_info,omitempty"`
	SocialLinks     map[string]string `bson:"social_links"`
	Skills          []string          `bson:"skills"`
	Experience      []string          `bson:"experience"`
	Education       []string          `bson:"education"`
	Certifications  []string          `bson:"certifications"`
	Languages       []string          `bson:"languages"`
	Interests       []string          `bson:"interests"`
	Projects        []projectDocument `bson:"projects"`
	ProfilePhoto    *photoDocument    `bson:"profile_photo,omitempty"`
	ResetTokenHash  *string           `bson:"reset_token_hash,omitempty"`
	ResetExpiresAt  *time.Time        `bson:"reset_token_expires_at,omitempty"`
	CreatedAt       time.Time         `bson:"created_at"`
	UpdatedAt       time.Time         `bson:"updated_at"`
}

type projectDocument struct {
	ID          string `bson:"id"`
	Title       string `bson:"title,omitempty"`
	Description string `bson:"description,omitempty"`
	URL         string `bson:"url,omitempty"`
}

type photoDocument struct {
	URL        string `bson:"url"`
	ExternalID string `bson:"public_id"`
}

// contactValue is what gets written for contact_info: a string or a sub-document.
func contactValue(c identity.ContactInfo) any {
	if c.IsStructured() {
		return bson.M(c.Fields())
	}
	return c.Text()
}

func contactFromRaw(raw bson.RawValue) (identity.ContactInfo, error) {
	switch raw.Type {
	case 0, bson.TypeNull, bson.TypeUndefined:
		return identity.ContactInfo{}, nil
	case bson.TypeString:
		return identity.ContactText(raw.StringValue()), nil
	case bson.TypeEmbeddedDocument:
		var fields bson.M
		if err := raw.Unmarshal(&fields); err != nil {
			return identity.ContactInfo{}, err
		}
		return identity.ContactStructured(map[string]any(fields)), nil
	default:
		return identity.ContactInfo{}, oops.Errorf("unexpected contact_info type %s", raw.Type)
	}
}

func projectsToDocuments(projects []identity.Project) []projectDocument {
	out := make([]projectDocument, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectDocument{
			ID:          p.ID.String(),
			Title:       p.Title,
			Description: p.Description,
			URL:         p.URL,
		})
	}
	return out
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// toDocument builds the insert document for u.
func toDocument(u *identity.User) bson.D {
	social := u.SocialLinks
	if social == nil {
		social = map[string]string{}
	}
	doc := bson.D{
		{Key: "_id", Value: u.ID.String()},
		{Key: "username", Value: u.Username},
		{Key: "email", Value: u.Email},
		{Key: "email_normalized", Value: identity.NormalizeEmail(u.Email)},
		{Key: "password_hash", Value: u.PasswordHash},
		{Key: "is_admin", Value: u.IsAdmin},
		{Key: "bio", Value: u.Bio},
		{Key: "job_title", Value: u.JobTitle},
		{Key: "location", Value: u.Location},
		{Key: "profile_image", Value: u.ProfileImage},
		{Key: "contact_info", Value: contactValue(u.ContactInfo)},
		{Key: "social_links", Value: social},
		{Key: "skills", Value: orEmpty(u.Skills)},
		{Key: "experience", Value: orEmpty(u.Experience)},
		{Key: "education", Value: orEmpty(u.Education)},
		{Key: "certifications", Value: orEmpty(u.Certifications)},
		{Key: "languages", Value: orEmpty(u.Languages)},
		{Key: "interests", Value: orEmpty(u.Interests)},
		{Key: "projects", Value: projectsToDocuments(u.Projects)},
		{Key: "created_at", Value: u.CreatedAt.UTC()},
		{Key: "updated_at", Value: u.UpdatedAt.UTC()},
	}
	if u.ProfilePhoto != nil {
		doc = append(doc, bson.E{Key: "profile_photo", Value: photoDocument{
			URL:        u.ProfilePhoto.URL,
			ExternalID: u.ProfilePhoto.ExternalID,
		}})
	}
	if u.Reset != nil {
		doc = append(doc,
			bson.E{Key: "reset_token_hash", Value: u.Reset.Hash},
			bson.E{Key: "reset_token_expires_at", Value: u.Reset.ExpiresAt.UTC()},
		)
	}
	return doc
}

func (d *userDocument) toUser() (*identity.User, error) {
	id, err := ulid.Parse(d.ID)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ID").With("id", d.ID).Wrap(err)
	}
	contact, err := contactFromRaw(d.ContactInfo)
	if err != nil {
		return nil, oops.Code("USER_DECODE_FAILED").With("field", "contact_info").Wrap(err)
	}

	u := &identity.User{
		ID:             id,
		Username:       d.Username,
		Email:          d.Email,
		PasswordHash:   d.PasswordHash,
		IsAdmin:        d.IsAdmin,
		Bio:            d.Bio,
		JobTitle:       d.JobTitle,
		Location:       d.Location,
		ProfileImage:   d.ProfileImage,
		ContactInfo:    contact,
		SocialLinks:    d.SocialLinks,
		Skills:         d.Skills,
		Experience:     d.Experience,
		Education:      d.Education,
		Certifications: d.Certifications,
		Languages:      d.Languages,
		Interests:      d.Interests,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
	for _, p := range d.Projects {
		pid, err := ulid.Parse(p.ID)
		if err != nil {
			return nil, oops.Code("USER_DECODE_FAILED").With("field", "projects").With("project_id", p.ID).Wrap(err)
		}
		u.Projects = append(u.Projects, identity.Project{
			ID:          pid,
			Title:       p.Title,
			Description: p.Description,
			URL:         p.URL,
		})
	}
	if d.ProfilePhoto != nil {
		u.ProfilePhoto = &identity.ProfilePhoto{URL: d.ProfilePhoto.URL, ExternalID: d.ProfilePhoto.ExternalID}
	}
	if d.ResetTokenHash != nil && d.ResetExpiresAt != nil {
		u.Reset = &identity.ResetTokenState{Hash: *d.ResetTokenHash, ExpiresAt: d.ResetExpiresAt.UTC()}
	}
	return u, nil
}

// updateDocument translates a UserUpdate into $set and $unset operators.
func updateDocument(u identity.UserUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now.UTC()}
	unset := bson.M{}

	setString := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	setList := func(key string, v []string) {
		if v != nil {
			set[key] = v
		}
	}

	setString("username", u.Username)
	if u.Email != nil {
		set["email"] = *u.Email
		set["email_normalized"] = identity.NormalizeEmail(*u.Email)
	}
	setString("password_hash", u.PasswordHash)
	setString("bio", u.Bio)
	setString("job_title", u.JobTitle)
	setString("location", u.Location)
	setString("profile_image", u.ProfileImage)
	if u.ContactInfo != nil {
		set["contact_info"] = contactValue(*u.ContactInfo)
	}
	if u.SocialLinks != nil {
		set["social_links"] = u.SocialLinks
	}
	setList("skills", u.Skills)
	setList("experience", u.Experience)
	setList("education", u.Education)
	setList("certifications", u.Certifications)
	setList("languages", u.Languages)
	setList("interests", u.Interests)
	if u.Projects != nil {
		set["projects"] = projectsToDocuments(u.Projects)
	}
	if u.ProfilePhoto != nil {
		set["profile_photo"] = photoDocument{URL: u.ProfilePhoto.URL, ExternalID: u.ProfilePhoto.ExternalID}
	}

	switch {
	case u.ClearReset:
		unset["reset_token_hash"] = ""
		unset["reset_token_expires_at"] = ""
	case u.Reset != nil:
		set["reset_token_hash"] = u.Reset.Hash
		set["reset_token_expires_at"] = u.Reset.ExpiresAt.UTC()
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}
