// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Hananem/Jobify-backend/internal/identity"
	"github.com/Hananem/Jobify-backend/pkg/errutil"
)

type errorBody struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind identity.Kind) int {
	switch kind {
	case identity.KindConflict:
		return http.StatusConflict
	case identity.KindInvalidCredentials:
		return http.StatusUnauthorized
	case identity.KindNotFound:
		return http.StatusNotFound
	case identity.KindInvalidOrExpired, identity.KindValidationFailed:
		return http.StatusBadRequest
	case identity.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeError renders err by kind. Causes never reach the client; Internal
// errors are logged with their oops context.
func (a *api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := identity.KindOf(err)
	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		logger := a.log.With("method", r.Method, "path", r.URL.Path)
		errutil.LogErrorContext(r.Context(), logger, "request failed", err)
	}
	writeJSON(w, status, errorBody{Error: string(kind), Message: identity.PublicMessage(err)})
}

func writeValidation(w http.ResponseWriter, fields []fieldError) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error:   string(identity.KindValidationFailed),
		Message: fields[0].Message,
		Fields:  fields,
	})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
				Error:   string(identity.KindValidationFailed),
				Message: "request body too large",
			})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   string(identity.KindValidationFailed),
			Message: "request body must be a JSON object",
		})
		return false
	}
	return true
}
