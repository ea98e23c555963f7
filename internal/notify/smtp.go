// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

// Package notify delivers outbound identity mail.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

// SMTPConfig holds relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP sends mail through an SMTP relay using STARTTLS when the server offers it.
type SMTP struct {
	cfg  SMTPConfig
	send sendMailFunc
	now  func() time.Time
}

// NewSMTP returns an SMTP notifier. Host and From are required.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, oops.Code("NOTIFY_CONFIG_INVALID").Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, oops.Code("NOTIFY_CONFIG_INVALID").Errorf("smtp sender address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTP{cfg: cfg, send: smtp.SendMail, now: time.Now}, nil
}

// Send delivers an HTML message. smtp.SendMail has no context support, so
// ctx is only checked before dialing.
func (s *SMTP) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return oops.Code("NOTIFY_SEND_FAILED").Wrap(err)
	}
	if strings.ContainsAny(to, "\r\n") {
		return oops.Code("NOTIFY_SEND_FAILED").Errorf("recipient contains a line break")
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	msg := s.message(to, subject, htmlBody)

	if err := s.send(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return oops.Code("NOTIFY_SEND_FAILED").
			With("smtp_host", s.cfg.Host).
			Wrap(err)
	}
	return nil
}

func (s *SMTP) message(to, subject, htmlBody string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return b.Bytes()
}

var _ identity.Notifier = (*SMTP)(nil)
