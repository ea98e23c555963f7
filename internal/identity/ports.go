// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identity

import "context"

// Notifier delivers outbound mail.
type Notifier interface {
	// Send delivers an HTML message to a single recipient.
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Image is a stored image.
type Image struct {
	URL        string
	ExternalID string
}

// ImageStore holds profile photos outside the user store.
type ImageStore interface {
	// Upload stores the file at path and returns its public reference.
	Upload(ctx context.Context, path string) (Image, error)

	// Remove deletes a previously uploaded image.
	Remove(ctx context.Context, externalID string) error
}

// ResetThrottle limits how often password resets may be requested per key.
type ResetThrottle interface {
	// Allow records an attempt for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)
}

// Identity event names reported to an EventRecorder.
const (
	EventRegister      = "register"
	EventLogin         = "login"
	EventResetRequest  = "reset_request"
	EventResetComplete = "reset_complete"
	EventProfileUpdate = "profile_update"
)

// EventRecorder receives one call per completed identity operation.
// outcome is "ok" or the error Kind.
type EventRecorder interface {
	RecordEvent(event, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordEvent(string, string) {}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	return string(KindOf(err))
}
