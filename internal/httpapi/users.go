// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package httpapi

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

type authResponse struct {
	Token     string         `json:"token"`
	ExpiresAt string         `json:"expiresAt"`
	User      *identity.User `json:"user"`
}

type listResponse struct {
	TotalUsers  int64            `json:"totalUsers"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	Users       []*identity.User `json:"users"`
}

type userResponse struct {
	Message string         `json:"message"`
	User    *identity.User `json:"user"`
}

type photoResponse struct {
	Message      string                 `json:"message"`
	ProfilePhoto *identity.ProfilePhoto `json:"profilePhoto"`
}

var photoExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

func newAuthResponse(res *identity.AuthResult) authResponse {
	return authResponse{
		Token:     res.Session.Token,
		ExpiresAt: res.Session.ExpiresAt.UTC().Format(http.TimeFormat),
		User:      res.User,
	}
}

func (a *api) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var v validator
	v.required(req.Username, "username", "Username is required")
	v.email(req.Email)
	v.password(req.Password, "password")
	if v.failed() {
		writeValidation(w, v.errs)
		return
	}

	res, err := a.deps.Credentials.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAuthResponse(res))
}

func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var v validator
	v.email(req.Email)
	v.check(req.Password != "", "password", "Password is required")
	if v.failed() {
		writeValidation(w, v.errs)
		return
	}

	res, err := a.deps.Credentials.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAuthResponse(res))
}

func (a *api) handleList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page")
	limit := queryInt(r, "limit")

	result, err := a.deps.Profiles.List(r.Context(), page, limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		TotalUsers:  result.Total,
		TotalPages:  result.TotalPages,
		CurrentPage: result.Page,
		Users:       result.Users,
	})
}

func (a *api) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}
	user, err := a.deps.Profiles.Get(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *api) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := a.selfID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	patch, err := identity.DecodeProfilePatch(r.Body)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	user, err := a.deps.Profiles.Update(r.Context(), id, patch)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Message: "User updated successfully", User: user})
}

func (a *api) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := a.selfID(w, r)
	if !ok {
		return
	}
	if err := a.deps.Profiles.Delete(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "User deleted successfully"})
}

func (a *api) handleProfilePhoto(w http.ResponseWriter, r *http.Request) {
	subject, _ := subjectFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, a.opts.MaxUploadBytes)
	file, header, err := r.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
				Error:   string(identity.KindValidationFailed),
				Message: "file too large",
			})
			return
		}
		writeValidation(w, []fieldError{{Field: "photo", Message: "No file provided"}})
		return
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !photoExtensions[ext] {
		writeValidation(w, []fieldError{{Field: "photo", Message: "Only image files are allowed"}})
		return
	}

	staged, err := os.CreateTemp(a.opts.UploadDir, "photo-*"+ext)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	defer func() {
		if rmErr := os.Remove(staged.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			a.log.WarnContext(r.Context(), "failed to remove staged upload", "path", staged.Name(), "error", rmErr)
		}
	}()

	_, copyErr := io.Copy(staged, file)
	closeErr := staged.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		a.writeError(w, r, err)
		return
	}

	photo, err := a.deps.Profiles.SetProfilePhoto(r.Context(), subject, staged.Name())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photoResponse{Message: "Profile photo uploaded successfully", ProfilePhoto: photo})
}

func (a *api) pathID(w http.ResponseWriter, r *http.Request) (ulid.ULID, bool) {
	id, err := ulid.ParseStrict(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{
			Error:   string(identity.KindNotFound),
			Message: "user not found",
		})
		return ulid.ULID{}, false
	}
	return id, true
}

// selfID resolves the {id} path parameter and requires it to be the caller.
func (a *api) selfID(w http.ResponseWriter, r *http.Request) (ulid.ULID, bool) {
	id, ok := a.pathID(w, r)
	if !ok {
		return ulid.ULID{}, false
	}
	subject, _ := subjectFrom(r.Context())
	if subject != id {
		writeJSON(w, http.StatusForbidden, errorBody{
			Error:   "Forbidden",
			Message: "you can only modify your own account",
		})
		return ulid.ULID{}, false
	}
	return id, true
}

// queryInt returns the integer query parameter, or 0 when absent or malformed.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}
