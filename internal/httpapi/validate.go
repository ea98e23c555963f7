// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package httpapi

import (
	"strings"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

// MinPasswordLength is the shortest password accepted at registration and reset.
const MinPasswordLength = 6

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validator struct {
	errs []fieldError
}

func (v *validator) check(ok bool, field, message string) {
	if !ok {
		v.errs = append(v.errs, fieldError{Field: field, Message: message})
	}
}

func (v *validator) required(value, field, message string) {
	v.check(strings.TrimSpace(value) != "", field, message)
}

func (v *validator) email(value string) {
	v.check(identity.LooksLikeEmail(strings.TrimSpace(value)), "email", "Please include a valid email")
}

func (v *validator) password(value, field string) {
	v.check(len(value) >= MinPasswordLength, field, "Password must be at least 6 characters")
}

func (v *validator) failed() bool {
	return len(v.errs) > 0
}
