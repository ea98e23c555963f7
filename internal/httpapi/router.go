// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

// Package httpapi exposes the identity services over HTTP under /api/users.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

// Credentials registers and authenticates users.
type Credentials interface {
	Register(ctx context.Context, username, email, password string) (*identity.AuthResult, error)
	Login(ctx context.Context, email, password string) (*identity.AuthResult, error)
}

// Recovery drives the password reset flow.
type Recovery interface {
	RequestReset(ctx context.Context, email string) error
	CheckToken(ctx context.Context, raw string) error
	ResetPassword(ctx context.Context, raw, newPassword string) error
}

// Profiles reads and edits user profiles.
type Profiles interface {
	Get(ctx context.Context, id ulid.ULID) (*identity.User, error)
	List(ctx context.Context, page, limit int) (*identity.UserPage, error)
	Update(ctx context.Context, id ulid.ULID, patch identity.ProfilePatch) (*identity.User, error)
	SetProfilePhoto(ctx context.Context, id ulid.ULID, path string) (*identity.ProfilePhoto, error)
	Delete(ctx context.Context, id ulid.ULID) error
}

// RequestObserver records one finished request.
type RequestObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// Deps are the services the API serves.
type Deps struct {
	Credentials Credentials
	Recovery    Recovery
	Profiles    Profiles
	Signer      identity.TokenSigner
}

// Options tune the router.
type Options struct {
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string
	// MaxUploadBytes caps multipart profile photo uploads.
	MaxUploadBytes int64
	// UploadDir stages uploaded photos; empty uses os.TempDir.
	UploadDir string
	Logger    *slog.Logger
	Observer  RequestObserver
}

const (
	defaultMaxUploadBytes = 10 << 20
	maxJSONBodyBytes      = 1 << 20
)

type api struct {
	deps Deps
	opts Options
	log  *slog.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(deps Deps, opts Options) (http.Handler, error) {
	switch {
	case deps.Credentials == nil:
		return nil, oops.Errorf("credential service is required")
	case deps.Recovery == nil:
		return nil, oops.Errorf("recovery flow is required")
	case deps.Profiles == nil:
		return nil, oops.Errorf("profile service is required")
	case deps.Signer == nil:
		return nil, oops.Errorf("token signer is required")
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.UploadDir == "" {
		opts.UploadDir = os.TempDir()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	a := &api{deps: deps, opts: opts, log: opts.Logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(requestContext)
	r.Use(chimiddleware.RealIP)
	r.Use(a.accessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{chimiddleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "NotFound", Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "MethodNotAllowed", Message: "method not allowed"})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", a.handleRegister)
		r.Post("/login", a.handleLogin)
		r.Get("/", a.handleList)

		r.Post("/send-reset-password-link", a.handleSendResetLink)
		r.Get("/reset-password/{resetToken}", a.handleCheckResetToken)
		r.Post("/reset-password", a.handleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(a.authenticate)
			r.Post("/profile/photo", a.handleProfilePhoto)
			r.Put("/{id}", a.handleUpdate)
			r.Delete("/{id}", a.handleDelete)
		})

		r.Get("/{id}", a.handleGet)
	})

	return r, nil
}
