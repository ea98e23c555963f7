// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package identity

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"

	"github.com/samber/oops"
)

// RecoveryMailSubject is the subject line of password-reset mail.
const RecoveryMailSubject = "Password Reset Request"

var recoveryMailTemplate = template.Must(template.New("recovery").Parse(
	`<h2>Password Reset Request</h2>
<p>You have requested a password reset. Please click the link below to reset your password:</p>
<a href="{{.Link}}">Reset Password</a>
`))

// RecoveryMail renders password-reset messages.
type RecoveryMail struct {
	base string
}

// NewRecoveryMail creates a RecoveryMail linking to frontendURL.
func NewRecoveryMail(frontendURL string) (*RecoveryMail, error) {
	base := strings.TrimRight(strings.TrimSpace(frontendURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, oops.Code("RECOVERY_MAIL_INVALID_URL").
			With("frontend_url", frontendURL).
			Errorf("frontend URL must be an absolute URL")
	}
	return &RecoveryMail{base: base}, nil
}

// Link returns the reset link for a raw token.
func (m *RecoveryMail) Link(rawToken string) string {
	return m.base + "/reset-password/" + url.PathEscape(rawToken)
}

// Render returns the subject and HTML body for a raw token.
func (m *RecoveryMail) Render(rawToken string) (subject, body string, err error) {
	var buf bytes.Buffer
	if err := recoveryMailTemplate.Execute(&buf, struct{ Link string }{Link: m.Link(rawToken)}); err != nil {
		return "", "", oops.Code("RECOVERY_MAIL_RENDER_FAILED").Wrap(err)
	}
	return RecoveryMailSubject, buf.String(), nil
}
