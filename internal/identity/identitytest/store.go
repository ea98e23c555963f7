// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

// Package identitytest provides in-memory implementations of the identity
// ports for tests.
package identitytest

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

// MemoryStore is a UserStore backed by a map. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.Mutex
	users map[ulid.ULID]*identity.User

	// PingErr is returned by Ping when set.
	PingErr error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[ulid.ULID]*identity.User)}
}

// FindByEmail returns the user whose email matches case-insensitively.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.byEmail(email); u != nil {
		return u.Clone(), nil
	}
	return nil, identity.ErrNotFound
}

// FindByID returns the user with id.
func (s *MemoryStore) FindByID(_ context.Context, id ulid.ULID) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u.Clone(), nil
	}
	return nil, identity.ErrNotFound
}

// Insert stores a copy of user.
func (s *MemoryStore) Insert(_ context.Context, user *identity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byEmail(user.Email) != nil {
		return identity.ErrDuplicate
	}
	s.users[user.ID] = user.Clone()
	return nil
}

// UpdateFields applies update atomically.
func (s *MemoryStore) UpdateFields(_ context.Context, id ulid.ULID, update identity.UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return identity.ErrNotFound
	}
	if update.Email != nil {
		if other := s.byEmail(*update.Email); other != nil && other.ID != id {
			return identity.ErrDuplicate
		}
	}
	update.Apply(u, time.Now().UTC())
	return nil
}

// DeleteByID removes a user.
func (s *MemoryStore) DeleteByID(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return identity.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// FindByValidResetHash returns the user holding hash with an expiry after now.
func (s *MemoryStore) FindByValidResetHash(_ context.Context, hash string, now time.Time) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Reset.ValidAt(now) && u.Reset.Hash == hash {
			return u.Clone(), nil
		}
	}
	return nil, identity.ErrNotFound
}

// ConsumeResetToken sets the password and clears the reset pair if the
// user still holds hash with an expiry after now.
func (s *MemoryStore) ConsumeResetToken(_ context.Context, id ulid.ULID, hash, newPasswordHash string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || !u.Reset.ValidAt(now) || u.Reset.Hash != hash {
		return identity.ErrNotFound
	}
	identity.UserUpdate{PasswordHash: &newPasswordHash, ClearReset: true}.Apply(u, now)
	return nil
}

// List returns users ordered by creation time.
func (s *MemoryStore) List(_ context.Context, offset, limit int) ([]*identity.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*identity.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	slices.SortFunc(all, func(a, b *identity.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return a.ID.Compare(b.ID)
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []*identity.User{}, total, nil
	}
	end := min(offset+limit, len(all))
	page := make([]*identity.User, 0, end-offset)
	for _, u := range all[offset:end] {
		page = append(page, u.Clone())
	}
	return page, total, nil
}

// Ping returns PingErr.
func (s *MemoryStore) Ping(context.Context) error {
	return s.PingErr
}

// Len returns the number of stored users.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Put stores a copy of user, replacing any user with the same ID.
func (s *MemoryStore) Put(user *identity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user.Clone()
}

func (s *MemoryStore) byEmail(email string) *identity.User {
	want := identity.NormalizeEmail(email)
	for _, u := range s.users {
		if identity.NormalizeEmail(u.Email) == want {
			return u
		}
	}
	return nil
}

var _ identity.UserStore = (*MemoryStore)(nil)
