// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identity

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ProfilePatch is a partial update to a user profile. Absent, null and
// empty values leave the existing field unchanged.
type ProfilePatch struct {
	Username     *string           `json:"username,omitempty"`
	Email        *string           `json:"email,omitempty"`
	Password     *string           `json:"password,omitempty"`
	Bio          *string           `json:"bio,omitempty"`
	JobTitle     *string           `json:"jobTitle,omitempty"`
	Location     *string           `json:"location,omitempty"`
	ProfileImage *string           `json:"profileImage,omitempty"`
	ContactInfo  *ContactInfo      `json:"contactInfo,omitempty"`
	SocialLinks  map[string]string `json:"socialLinks,omitempty"`

	Skills         StringList `json:"skills"`
	Experience     StringList `json:"experience"`
	Education      StringList `json:"education"`
	Certifications StringList `json:"certifications"`
	Languages      StringList `json:"languages"`
	Interests      StringList `json:"interests"`

	Projects ProjectPatches `json:"projects"`
}

// DecodeProfilePatch reads a JSON patch. Unknown fields are ignored; wrongly
// shaped fields fail with PATCH_INVALID.
func DecodeProfilePatch(r io.Reader) (ProfilePatch, error) {
	var patch ProfilePatch
	if err := json.NewDecoder(r).Decode(&patch); err != nil {
		if code := ErrorCode(err); code == CodeInvalidPatch {
			return ProfilePatch{}, err
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if typeErr.Field == "" {
				return ProfilePatch{}, oops.Code(CodeInvalidPatch).Errorf("request body must be a JSON object")
			}
			return ProfilePatch{}, oops.Code(CodeInvalidPatch).
				With("field", typeErr.Field).
				Errorf("%s has the wrong type", typeErr.Field)
		}
		return ProfilePatch{}, oops.Code(CodeInvalidPatch).Errorf("request body is not a valid profile update")
	}
	return patch, nil
}

// StringList is a list-valued patch field. It decodes from a JSON array of
// strings or from a single comma-separated string.
type StringList struct {
	values  []string
	present bool
}

// NewStringList returns a present StringList holding values.
func NewStringList(values ...string) StringList {
	if values == nil {
		values = []string{}
	}
	return StringList{values: values, present: true}
}

// Present reports whether the field carries a replacement value.
func (l StringList) Present() bool {
	return l.present
}

// Values returns the replacement value.
func (l StringList) Values() []string {
	return l.values
}

// MarshalJSON encodes a present list as an array and an absent one as null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if !l.present {
		return []byte("null"), nil
	}
	return json.Marshal(l.values)
}

// UnmarshalJSON accepts null, an array of strings, or a comma-separated string.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = StringList{}
	case len(data) > 0 && data[0] == '"':
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return oops.Code(CodeInvalidPatch).Wrap(err)
		}
		if strings.TrimSpace(joined) == "" {
			*l = StringList{}
			return nil
		}
		*l = NewStringList(splitCommaList(joined)...)
	case len(data) > 0 && data[0] == '[':
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return oops.Code(CodeInvalidPatch).Errorf("list fields must contain only strings")
		}
		*l = NewStringList(values...)
	default:
		return oops.Code(CodeInvalidPatch).Errorf("list fields must be an array or a comma-separated string")
	}
	return nil
}

func splitCommaList(joined string) []string {
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ProjectPatch is one incoming project. Unset fields fall back to the
// existing project it is matched with.
type ProjectPatch struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// ProjectPatches is the projects field of a patch. A nil value means absent.
type ProjectPatches []ProjectPatch

// UnmarshalJSON accepts null or an array of project objects.
func (p *ProjectPatches) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}
	if len(data) == 0 || data[0] != '[' {
		return oops.Code(CodeInvalidPatch).Errorf("projects must be an array")
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return oops.Code(CodeInvalidPatch).Errorf("projects must be an array")
	}
	out := make(ProjectPatches, 0, len(raw))
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return oops.Code(CodeInvalidPatch).With("index", i).Errorf("projects[%d] must be an object", i)
		}
		var pp ProjectPatch
		if err := json.Unmarshal(item, &pp); err != nil {
			return oops.Code(CodeInvalidPatch).With("index", i).Errorf("projects[%d] has a field of the wrong type", i)
		}
		out = append(out, pp)
	}
	*p = out
	return nil
}

// ProfileMerger applies profile patches onto existing users.
type ProfileMerger struct {
	hasher PasswordHasher
	newID  func() ulid.ULID
}

// NewProfileMerger creates a ProfileMerger. newID mints IDs for projects
// that match nothing existing; nil uses ulid.Make.
func NewProfileMerger(hasher PasswordHasher, newID func() ulid.ULID) (*ProfileMerger, error) {
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if newID == nil {
		newID = ulid.Make
	}
	return &ProfileMerger{hasher: hasher, newID: newID}, nil
}

// Merge returns a copy of existing with patch applied. existing is not modified.
func (m *ProfileMerger) Merge(existing *User, patch ProfilePatch) (*User, error) {
	out := existing.Clone()

	mergeScalar(&out.Username, patch.Username)
	mergeScalar(&out.Email, patch.Email)
	mergeScalar(&out.Bio, patch.Bio)
	mergeScalar(&out.JobTitle, patch.JobTitle)
	mergeScalar(&out.Location, patch.Location)
	mergeScalar(&out.ProfileImage, patch.ProfileImage)

	if patch.ContactInfo != nil {
		mergeContactInfo(&out.ContactInfo, *patch.ContactInfo)
	}
	if len(patch.SocialLinks) > 0 {
		out.SocialLinks = maps.Clone(patch.SocialLinks)
	}

	mergeList(&out.Skills, patch.Skills)
	mergeList(&out.Experience, patch.Experience)
	mergeList(&out.Education, patch.Education)
	mergeList(&out.Certifications, patch.Certifications)
	mergeList(&out.Languages, patch.Languages)
	mergeList(&out.Interests, patch.Interests)

	if patch.Projects != nil {
		out.Projects = m.mergeProjects(existing.Projects, patch.Projects)
	}

	if patch.Password != nil && *patch.Password != "" {
		hash, err := m.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, oops.Code("PROFILE_MERGE_FAILED").
				With("operation", "hash password").
				Wrap(err)
		}
		out.PasswordHash = hash
	}

	return out, nil
}

// mergeProjects matches incoming projects by id. An incoming project with an
// unknown well-formed ULID keeps that id. One with no id, or an id that is not
// a ULID, falls back to the existing project at the same index, and past the
// end of the existing list a blank id is minted while a malformed one is
// derived from its text so reapplying the patch yields the same id.
func (m *ProfileMerger) mergeProjects(existing []Project, incoming ProjectPatches) []Project {
	byID := make(map[string]Project, len(existing))
	for _, p := range existing {
		byID[p.ID.String()] = p
	}

	out := make([]Project, 0, len(incoming))
	for i, in := range incoming {
		var base Project
		id := strings.TrimSpace(in.ID)
		match, known := byID[strings.ToUpper(id)]
		parsed, parseErr := ulid.ParseStrict(id)
		switch {
		case id != "" && known:
			base = match
		case parseErr == nil:
			base.ID = parsed
		case i < len(existing):
			base = existing[i]
		case id != "":
			base.ID = derivedProjectID(id)
		default:
			base.ID = m.newID()
		}
		out = append(out, Project{
			ID:          base.ID,
			Title:       pick(in.Title, base.Title),
			Description: pick(in.Description, base.Description),
			URL:         pick(in.URL, base.URL),
		})
	}
	return out
}

func derivedProjectID(raw string) ulid.ULID {
	sum := sha256.Sum256([]byte(raw))
	var id ulid.ULID
	copy(id[:], sum[:len(id)])
	return id
}

func mergeScalar(dst *string, in *string) {
	if in == nil {
		return
	}
	if v := strings.TrimSpace(*in); v != "" {
		*dst = v
	}
}

func mergeContactInfo(dst *ContactInfo, in ContactInfo) {
	if in.IsStructured() {
		*dst = ContactStructured(maps.Clone(in.Fields()))
		return
	}
	if v := strings.TrimSpace(in.Text()); v != "" {
		*dst = ContactText(v)
	}
}

func mergeList(dst *[]string, in StringList) {
	if in.Present() {
		*dst = slices.Clone(in.Values())
		if *dst == nil {
			*dst = []string{}
		}
	}
}

func pick(in, fallback string) string {
	if v := strings.TrimSpace(in); v != "" {
		return v
	}
	return fallback
}
