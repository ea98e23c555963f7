// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hananem/Jobify-backend/pkg/errutil"
)

type capturedMail struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func TestNewSMTP_Validation(t *testing.T) {
	_, err := NewSMTP(SMTPConfig{From: "a@b.co"})
	errutil.AssertErrorCode(t, err, "NOTIFY_CONFIG_INVALID")

	_, err = NewSMTP(SMTPConfig{Host: "smtp.example"})
	errutil.AssertErrorCode(t, err, "NOTIFY_CONFIG_INVALID")

	n, err := NewSMTP(SMTPConfig{Host: "smtp.example", From: "a@b.co"})
	require.NoError(t, err)
	assert.Equal(t, 587, n.cfg.Port)
}

func TestSMTP_Send(t *testing.T) {
	n, err := NewSMTP(SMTPConfig{
		Host:     "smtp.example",
		Port:     2525,
		Username: "mailer",
		Password: "secret",
		From:     "Jobify <no-reply@jobify.example>",
	})
	require.NoError(t, err)
	n.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	var got capturedMail
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		got = capturedMail{addr: addr, auth: a, from: from, to: to, msg: string(msg)}
		return nil
	}

	err = n.Send(context.Background(), "ada@example.com", "Password Reset Request", "<p>hi</p>")
	require.NoError(t, err)

	assert.Equal(t, "smtp.example:2525", got.addr)
	assert.NotNil(t, got.auth)
	assert.Equal(t, []string{"ada@example.com"}, got.to)
	assert.Contains(t, got.msg, "To: ada@example.com\r\n")
	assert.Contains(t, got.msg, "Subject: Password Reset Request\r\n")
	assert.Contains(t, got.msg, "Content-Type: text/html")
	assert.Contains(t, got.msg, "Date: Fri, 02 Jan 2026 03:04:05 +0000\r\n")
	assert.True(t, bytes.HasSuffix([]byte(got.msg), []byte("\r\n\r\n<p>hi</p>")))
}

func TestSMTP_SendFailures(t *testing.T) {
	n, err := NewSMTP(SMTPConfig{Host: "smtp.example", From: "a@b.co"})
	require.NoError(t, err)
	n.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("421 service not available") }

	err = n.Send(context.Background(), "ada@example.com", "s", "b")
	errutil.AssertErrorCode(t, err, "NOTIFY_SEND_FAILED")

	err = n.Send(context.Background(), "ada@example.com\r\nBcc: x@y.z", "s", "b")
	errutil.AssertErrorCode(t, err, "NOTIFY_SEND_FAILED")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = n.Send(ctx, "ada@example.com", "s", "b")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLog_Send(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, n.Send(context.Background(), "ada@example.com", "Subject", "<a>link</a>"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "outbound mail", entry["msg"])
	assert.Equal(t, "ada@example.com", entry["to"])
	assert.Equal(t, "<a>link</a>", entry["body"])
}
