// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identitytest

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

// FastHasher returns an argon2id hasher with minimal cost parameters.
func FastHasher() *identity.Argon2idHasher {
	h, err := identity.NewArgon2idHasherWithParams(identity.Argon2Params{
		Time:    1,
		Memory:  64,
		Threads: 1,
		SaltLen: 16,
		KeyLen:  32,
	})
	if err != nil {
		panic(err)
	}
	return h
}

// Mail is a message captured by RecordingNotifier.
type Mail struct {
	To      string
	Subject string
	Body    string
}

var resetLinkPattern = regexp.MustCompile(`/reset-password/([0-9a-f]+)`)

// ResetToken extracts the raw reset token from a recovery mail body.
func (m Mail) ResetToken() string {
	match := resetLinkPattern.FindStringSubmatch(m.Body)
	if match == nil {
		return ""
	}
	return match[1]
}

// RecordingNotifier captures sent mail. Err, when set, is returned instead.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []Mail

	Err error
}

// Send records the message.
func (n *RecordingNotifier) Send(_ context.Context, to, subject, htmlBody string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.sent = append(n.sent, Mail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// Sent returns a copy of the recorded messages.
func (n *RecordingNotifier) Sent() []Mail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Mail(nil), n.sent...)
}

// Last returns the most recent message, or the zero Mail.
func (n *RecordingNotifier) Last() Mail {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return Mail{}
	}
	return n.sent[len(n.sent)-1]
}

// FakeImageStore records uploads and removals in memory.
type FakeImageStore struct {
	mu      sync.Mutex
	next    int
	live    map[string]string
	removed []string

	UploadErr error
}

// NewFakeImageStore creates an empty FakeImageStore.
func NewFakeImageStore() *FakeImageStore {
	return &FakeImageStore{live: make(map[string]string)}
}

// Upload stores path under a sequential external ID.
func (s *FakeImageStore) Upload(_ context.Context, path string) (identity.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UploadErr != nil {
		return identity.Image{}, s.UploadErr
	}
	s.next++
	id := fmt.Sprintf("img-%d", s.next)
	s.live[id] = path
	return identity.Image{
		URL:        "https://images.example.test/" + id + filepath.Ext(path),
		ExternalID: id,
	}, nil
}

// Remove deletes an uploaded image.
func (s *FakeImageStore) Remove(_ context.Context, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, externalID)
	s.removed = append(s.removed, externalID)
	return nil
}

// Live returns the IDs of images that have been uploaded and not removed.
func (s *FakeImageStore) Live() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.live))
	for id := range s.live {
		ids = append(ids, id)
	}
	return ids
}

// Removed returns the IDs passed to Remove, in order.
func (s *FakeImageStore) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removed...)
}

// StaticThrottle allows a fixed number of requests per key.
type StaticThrottle struct {
	mu     sync.Mutex
	counts map[string]int

	Limit int
	Err   error
}

// Allow counts an attempt for key.
func (t *StaticThrottle) Allow(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return false, t.Err
	}
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	t.counts[key]++
	return t.counts[key] <= t.Limit, nil
}

// EventLog records identity events.
type EventLog struct {
	mu     sync.Mutex
	events []string
}

// RecordEvent appends "event:outcome".
func (l *EventLog) RecordEvent(event, outcome string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event+":"+outcome)
}

// Events returns the recorded events.
func (l *EventLog) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

var (
	_ identity.Notifier      = (*RecordingNotifier)(nil)
	_ identity.ImageStore    = (*FakeImageStore)(nil)
	_ identity.ResetThrottle = (*StaticThrottle)(nil)
	_ identity.EventRecorder = (*EventLog)(nil)
)
