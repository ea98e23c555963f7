// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *api) handleSendResetLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var v validator
	v.email(req.Email)
	if v.failed() {
		writeValidation(w, v.errs)
		return
	}

	if err := a.deps.Recovery.RequestReset(r.Context(), req.Email); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Password reset link sent to your email"})
}

func (a *api) handleCheckResetToken(w http.ResponseWriter, r *http.Request) {
	if err := a.deps.Recovery.CheckToken(r.Context(), chi.URLParam(r, "resetToken")); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Reset token is valid"})
}

func (a *api) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResetToken  string `json:"resetToken"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var v validator
	v.required(req.ResetToken, "resetToken", "Reset token is required")
	v.password(req.NewPassword, "newPassword")
	if v.failed() {
		writeValidation(w, v.errs)
		return
	}

	if err := a.deps.Recovery.ResetPassword(r.Context(), req.ResetToken, req.NewPassword); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Password reset successful. You can now log in."})
}
