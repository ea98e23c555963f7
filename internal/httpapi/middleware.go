// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"

	"github.com/Hananem/Jobify-backend/internal/identity"
	"github.com/Hananem/Jobify-backend/internal/logging"
)

type ctxKey int

const subjectKey ctxKey = iota

// requestContext copies chi's request id into the logging context and
// echoes it back to the client.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chimiddleware.GetReqID(r.Context())
		if id != "" {
			w.Header().Set(chimiddleware.RequestIDHeader, id)
			r = r.WithContext(logging.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog logs each request and reports it to the observer under its
// route pattern.
func (a *api) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		if a.opts.Observer != nil {
			a.opts.Observer.ObserveHTTP(r.Method, route, status, elapsed)
		}

		a.log.InfoContext(r.Context(), "request completed",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"bytes", ww.BytesWritten())
	})
}

// authenticate requires a valid bearer session token and stores its subject
// in the request context.
func (a *api) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorBody{
				Error:   string(identity.KindInvalidCredentials),
				Message: "authentication required",
			})
			return
		}
		subject, err := a.deps.Signer.Verify(token)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), subjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// subjectFrom returns the authenticated user id.
func subjectFrom(ctx context.Context) (ulid.ULID, bool) {
	id, ok := ctx.Value(subjectKey).(ulid.ULID)
	return id, ok
}
