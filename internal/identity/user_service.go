// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identity

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Pagination defaults for List.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// UserPage is one page of users.
type UserPage struct {
	Users      []*User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService reads, updates and deletes user profiles.
type UserService struct {
	users  UserStore
	merger *ProfileMerger
	images ImageStore
	opts   options
}

// NewUserService creates a UserService. images may be nil, in which case
// profile photo uploads fail with IMAGE_STORE_DISABLED.
func NewUserService(users UserStore, merger *ProfileMerger, images ImageStore, opts ...Option) (*UserService, error) {
	if users == nil {
		return nil, oops.Errorf("user store is required")
	}
	if merger == nil {
		return nil, oops.Errorf("profile merger is required")
	}
	return &UserService{
		users:  users,
		merger: merger,
		images: images,
		opts:   buildOptions(opts),
	}, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id ulid.ULID) (*User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errUserNotFound()
		}
		return nil, oops.Code("USER_GET_FAILED").
			With("user_id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// List returns a page of users. Non-positive page and limit fall back to
// DefaultPage and DefaultLimit; limit is capped at MaxLimit.
func (s *UserService) List(ctx context.Context, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	users, total, err := s.users.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").
			With("page", page).
			With("limit", limit).
			Wrap(err)
	}
	if users == nil {
		users = []*User{}
	}

	return &UserPage{
		Users:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// Update merges patch onto the user and persists the changed fields.
// Changing the email to one held by another user returns USER_EMAIL_TAKEN.
func (s *UserService) Update(ctx context.Context, id ulid.ULID, patch ProfilePatch) (updated *User, err error) {
	defer func() { s.opts.recorder.RecordEvent(EventProfileUpdate, outcomeOf(err)) }()

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged, err := s.merger.Merge(existing, patch)
	if err != nil {
		return nil, err
	}

	if NormalizeEmail(merged.Email) != NormalizeEmail(existing.Email) {
		if !LooksLikeEmail(merged.Email) {
			return nil, oops.Code(CodeInvalidUser).Errorf("email address is not valid")
		}
		other, findErr := s.users.FindByEmail(ctx, merged.Email)
		switch {
		case findErr == nil && other.ID != id:
			return nil, errEmailTaken()
		case findErr != nil && !errors.Is(findErr, ErrNotFound):
			return nil, oops.Code("USER_UPDATE_FAILED").
				With("operation", "find by email").
				Wrap(findErr)
		}
	}

	update := DiffUpdate(existing, merged)
	if update.IsEmpty() {
		return merged, nil
	}

	if err := s.users.UpdateFields(ctx, id, update); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, errUserNotFound()
		case errors.Is(err, ErrDuplicate):
			return nil, errEmailTaken()
		}
		return nil, oops.Code("USER_UPDATE_FAILED").
			With("operation", "update fields").
			With("user_id", id.String()).
			Wrap(err)
	}
	merged.UpdatedAt = s.opts.now().UTC()

	s.opts.logger.InfoContext(ctx, "user profile updated", "user_id", id.String())
	return merged, nil
}

// SetProfilePhoto uploads the image at path and makes it the user's profile
// photo. The previous photo is removed from the image store best effort.
func (s *UserService) SetProfilePhoto(ctx context.Context, id ulid.ULID, path string) (*ProfilePhoto, error) {
	if s.images == nil {
		return nil, oops.Code(CodeImageStoreDisabled).Errorf("image storage not configured")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	img, err := s.images.Upload(ctx, path)
	if err != nil {
		return nil, oops.Code("PROFILE_PHOTO_UPLOAD_FAILED").
			With("user_id", id.String()).
			Wrap(err)
	}

	photo := &ProfilePhoto{URL: img.URL, ExternalID: img.ExternalID}
	if err := s.users.UpdateFields(ctx, id, UserUpdate{ProfilePhoto: photo}); err != nil {
		s.removeImage(ctx, img.ExternalID)
		if errors.Is(err, ErrNotFound) {
			return nil, errUserNotFound()
		}
		return nil, oops.Code("PROFILE_PHOTO_UPLOAD_FAILED").
			With("operation", "update fields").
			With("user_id", id.String()).
			Wrap(err)
	}

	if user.ProfilePhoto != nil && user.ProfilePhoto.ExternalID != "" && user.ProfilePhoto.ExternalID != img.ExternalID {
		s.removeImage(ctx, user.ProfilePhoto.ExternalID)
	}

	return photo, nil
}

// Delete removes a user and, best effort, their stored profile photo.
func (s *UserService) Delete(ctx context.Context, id ulid.ULID) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errUserNotFound()
		}
		return oops.Code("USER_DELETE_FAILED").
			With("user_id", id.String()).
			Wrap(err)
	}

	if user.ProfilePhoto != nil && user.ProfilePhoto.ExternalID != "" {
		s.removeImage(ctx, user.ProfilePhoto.ExternalID)
	}

	s.opts.logger.InfoContext(ctx, "user deleted", "user_id", id.String())
	return nil
}

func (s *UserService) removeImage(ctx context.Context, externalID string) {
	if s.images == nil {
		return
	}
	if err := s.images.Remove(ctx, externalID); err != nil {
		s.opts.logger.WarnContext(ctx, "failed to remove stored image",
			"external_id", externalID,
			"error", err)
	}
}
