// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

//go:build integration

package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

type apiResponse struct {
	Status int
	Body   map[string]any
}

func call(method, path string, body any, token string) apiResponse {
	GinkgoHelper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, env.server.URL+path, reader)
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.server.Client().Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = resp.Body.Close() }()

	out := apiResponse{Status: resp.StatusCode}
	Expect(json.NewDecoder(resp.Body).Decode(&out.Body)).To(Succeed())
	return out
}

type account struct {
	ID    string
	Token string
}

func register(username, email, password string) account {
	GinkgoHelper()
	resp := call(http.MethodPost, "/api/users/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, "")
	Expect(resp.Status).To(Equal(http.StatusCreated))
	user := resp.Body["user"].(map[string]any)
	return account{ID: user["id"].(string), Token: resp.Body["token"].(string)}
}

var _ = Describe("Users API", func() {
	BeforeEach(func() {
		truncateUsers()
	})

	Describe("registration and login", func() {
		It("issues a session on register and login", func() {
			acct := register("ada", "Ada@Example.com", "secret1")
			Expect(acct.Token).NotTo(BeEmpty())

			resp := call(http.MethodPost, "/api/users/login", map[string]string{
				"email": "ada@example.com", "password": "secret1",
			}, "")
			Expect(resp.Status).To(Equal(http.StatusOK))
			Expect(resp.Body["token"]).NotTo(BeEmpty())
		})

		It("rejects a second account with the same email in any case", func() {
			register("ada", "ada@example.com", "secret1")

			resp := call(http.MethodPost, "/api/users/register", map[string]string{
				"username": "imposter", "email": "ADA@EXAMPLE.COM", "password": "secret1",
			}, "")
			Expect(resp.Status).To(Equal(http.StatusConflict))
			Expect(resp.Body["error"]).To(Equal("Conflict"))
		})

		It("does not distinguish an unknown email from a wrong password", func() {
			register("ada", "ada@example.com", "secret1")

			wrong := call(http.MethodPost, "/api/users/login", map[string]string{
				"email": "ada@example.com", "password": "nope-nope",
			}, "")
			unknown := call(http.MethodPost, "/api/users/login", map[string]string{
				"email": "ghost@example.com", "password": "secret1",
			}, "")
			Expect(wrong.Status).To(Equal(http.StatusUnauthorized))
			Expect(unknown).To(Equal(wrong))
		})
	})

	Describe("profiles", func() {
		It("merges a patch and persists it", func() {
			acct := register("ada", "ada@example.com", "secret1")

			resp := call(http.MethodPut, "/api/users/"+acct.ID, map[string]any{
				"jobTitle": "Engineer",
				"skills":   "go, postgres",
				"projects": []map[string]string{{"title": "Analytical Engine"}},
			}, acct.Token)
			Expect(resp.Status).To(Equal(http.StatusOK))

			got := call(http.MethodGet, "/api/users/"+acct.ID, nil, "")
			Expect(got.Status).To(Equal(http.StatusOK))
			Expect(got.Body["jobTitle"]).To(Equal("Engineer"))
			Expect(got.Body["skills"]).To(ConsistOf("go", "postgres"))
			Expect(got.Body["projects"]).To(HaveLen(1))
			Expect(got.Body).NotTo(HaveKey("passwordHash"))
		})

		It("forbids editing another account", func() {
			ada := register("ada", "ada@example.com", "secret1")
			grace := register("grace", "grace@example.com", "secret1")

			resp := call(http.MethodPut, "/api/users/"+grace.ID, map[string]any{"bio": "hijacked"}, ada.Token)
			Expect(resp.Status).To(Equal(http.StatusForbidden))
		})

		It("pages through users", func() {
			for _, name := range []string{"a", "b", "c", "d", "e"} {
				register(name, name+"@example.com", "secret1")
			}

			resp := call(http.MethodGet, "/api/users?page=3&limit=2", nil, "")
			Expect(resp.Status).To(Equal(http.StatusOK))
			Expect(resp.Body["totalUsers"]).To(BeNumerically("==", 5))
			Expect(resp.Body["totalPages"]).To(BeNumerically("==", 3))
			Expect(resp.Body["users"]).To(HaveLen(1))
		})

		It("deletes the caller's account", func() {
			acct := register("ada", "ada@example.com", "secret1")

			Expect(call(http.MethodDelete, "/api/users/"+acct.ID, nil, acct.Token).Status).To(Equal(http.StatusOK))
			Expect(call(http.MethodGet, "/api/users/"+acct.ID, nil, "").Status).To(Equal(http.StatusNotFound))
		})
	})

	Describe("password recovery", func() {
		var raw string

		BeforeEach(func() {
			register("ada", "ada@example.com", "secret1")
			resp := call(http.MethodPost, "/api/users/send-reset-password-link", map[string]string{"email": "ada@example.com"}, "")
			Expect(resp.Status).To(Equal(http.StatusOK))
			raw = env.Notifier.Last().ResetToken()
			Expect(raw).NotTo(BeEmpty())
		})

		It("never stores the raw token", func() {
			var stored string
			err := env.pool.QueryRow(env.ctx, "SELECT reset_token_hash FROM users WHERE LOWER(email) = 'ada@example.com'").Scan(&stored)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).NotTo(BeEmpty())
			Expect(stored).NotTo(Equal(raw))
		})

		It("resets the password once", func() {
			Expect(call(http.MethodGet, "/api/users/reset-password/"+raw, nil, "").Status).To(Equal(http.StatusOK))

			resp := call(http.MethodPost, "/api/users/reset-password", map[string]string{
				"resetToken": raw, "newPassword": "brand-new",
			}, "")
			Expect(resp.Status).To(Equal(http.StatusOK))

			again := call(http.MethodPost, "/api/users/reset-password", map[string]string{
				"resetToken": raw, "newPassword": "brand-new-2",
			}, "")
			Expect(again.Status).To(Equal(http.StatusBadRequest))
			Expect(again.Body["error"]).To(Equal("InvalidOrExpired"))

			login := call(http.MethodPost, "/api/users/login", map[string]string{
				"email": "ada@example.com", "password": "brand-new",
			}, "")
			Expect(login.Status).To(Equal(http.StatusOK))
		})

		It("lets exactly one of several concurrent resets win", func() {
			const attempts = 8
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				success int
			)
			for range attempts {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					err := env.Recovery.ResetPassword(env.ctx, raw, "concurrent-pass")
					if err == nil {
						mu.Lock()
						success++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			Expect(success).To(Equal(1))
		})

		It("replaces an earlier token when a new link is requested", func() {
			first := raw
			resp := call(http.MethodPost, "/api/users/send-reset-password-link", map[string]string{"email": "ada@example.com"}, "")
			Expect(resp.Status).To(Equal(http.StatusOK))

			Expect(call(http.MethodGet, "/api/users/reset-password/"+first, nil, "").Status).To(Equal(http.StatusBadRequest))
		})
	})
})
