// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hananem/Jobify-backend/internal/config"
	"github.com/Hananem/Jobify-backend/internal/identity"
	"github.com/Hananem/Jobify-backend/internal/identity/identitytest"
	"github.com/Hananem/Jobify-backend/internal/observability"
	"github.com/Hananem/Jobify-backend/pkg/errutil"
)

func serveConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.MetricsAddr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Log.Format = "text"
	cfg.Auth.JWTSecret = testSecret
	cfg.Store.PostgresURL = "postgres://unused"
	return &cfg
}

type serveHarness struct {
	deps      *ServeDeps
	store     *identitytest.MemoryStore
	notifier  *identitytest.RecordingNotifier
	listeners chan net.Listener
	obs       chan ObservabilityServer
	closed    chan string
}

func newServeHarness(t *testing.T) *serveHarness {
	t.Helper()
	h := &serveHarness{
		store:     identitytest.NewMemoryStore(),
		notifier:  &identitytest.RecordingNotifier{},
		listeners: make(chan net.Listener, 1),
		obs:       make(chan ObservabilityServer, 1),
		closed:    make(chan string, 2),
	}
	uploadDir := t.TempDir()
	h.deps = &ServeDeps{
		StoreFactory: func(context.Context, *config.Config, *slog.Logger) (identity.UserStore, func(), error) {
			return h.store, func() { h.closed <- "store" }, nil
		},
		NotifierFactory: func(*config.Config, *slog.Logger) (identity.Notifier, error) {
			return h.notifier, nil
		},
		ObservabilityServerFactory: func(addr string, readiness observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			srv := observability.NewServer(addr, readiness, logger)
			h.obs <- srv
			return srv
		},
		ListenerFactory: func(network, address string) (net.Listener, error) {
			l, err := net.Listen(network, address)
			if err == nil {
				h.listeners <- l
			}
			return l, err
		},
		UploadDirGetter: func() (string, error) { return uploadDir, nil },
	}
	return h
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd, buf
}

func TestServe_ServesAPIAndHealth(t *testing.T) {
	h := newServeHarness(t)
	cmd, out := newTestCmd()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- runServeWithDeps(ctx, serveConfig(), cmd, h.deps) }()

	var listener net.Listener
	select {
	case listener = <-h.listeners:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for api listener")
	}
	obs := <-h.obs
	apiURL := "http://" + listener.Addr().String()

	resp, err := http.Post(apiURL+"/api/users/register", "application/json",
		strings.NewReader(`{"username":"ada","email":"ada@example.com","password":"secret1"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, h.store.Len())

	resp, err = http.Get("http://" + obs.Addr() + "/healthz/readiness")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get("http://" + obs.Addr() + "/metrics")
	require.NoError(t, err)
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	_ = resp.Body.Close()
	assert.Contains(t, body.String(), `jobify_identity_events_total{event="register",outcome="ok"} 1`)
	assert.Contains(t, body.String(), `route="/api/users/register"`)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not shut down")
	}
	assert.Equal(t, "store", <-h.closed)
	assert.Contains(t, out.String(), "Jobify API listening on")
	assert.Contains(t, out.String(), "shutdown complete")
}

func TestServe_MetricsDisabled(t *testing.T) {
	h := newServeHarness(t)
	h.deps.ObservabilityServerFactory = func(string, observability.ReadinessChecker, *slog.Logger) ObservabilityServer {
		t.Fatal("observability server must not be created")
		return nil
	}
	cfg := serveConfig()
	cfg.Server.MetricsAddr = ""
	cmd, _ := newTestCmd()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- runServeWithDeps(ctx, cfg, cmd, h.deps) }()

	<-h.listeners
	cancel()
	require.NoError(t, <-done)
}

func TestServe_StoreFailure(t *testing.T) {
	h := newServeHarness(t)
	h.deps.StoreFactory = func(context.Context, *config.Config, *slog.Logger) (identity.UserStore, func(), error) {
		return nil, nil, errors.New("connection refused")
	}
	cmd, _ := newTestCmd()

	err := runServeWithDeps(context.Background(), serveConfig(), cmd, h.deps)
	require.Error(t, err)
	errutil.AssertErrorContext(t, err, "operation", "open user store")
}

func TestServe_ListenFailureStopsObservability(t *testing.T) {
	h := newServeHarness(t)
	h.deps.ListenerFactory = func(string, string) (net.Listener, error) {
		return nil, errors.New("address already in use")
	}
	cmd, _ := newTestCmd()

	err := runServeWithDeps(context.Background(), serveConfig(), cmd, h.deps)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "LISTEN_FAILED")

	obs := <-h.obs
	_, dialErr := net.DialTimeout("tcp", obs.Addr(), time.Second)
	assert.Error(t, dialErr, "observability listener is closed")
}

func TestServe_InvalidLogLevel(t *testing.T) {
	cfg := serveConfig()
	cfg.Log.Level = "loud"
	cmd, _ := newTestCmd()

	err := runServeWithDeps(context.Background(), cfg, cmd, newServeHarness(t).deps)
	errutil.AssertErrorCode(t, err, "LOG_LEVEL_INVALID")
}

func TestServeCmd_RequiresValidConfig(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "", "serve", "--database-url", "postgres://localhost/jobify")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	errutil.AssertErrorContext(t, err, "field", "auth.jwt_secret")
}

func TestBuildThrottle(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("memory", func(t *testing.T) {
		cfg := serveConfig()
		th, closeFn, err := buildThrottle(context.Background(), cfg, logger)
		require.NoError(t, err)
		require.NotNil(t, th)
		closeFn()
	})

	t.Run("none", func(t *testing.T) {
		cfg := serveConfig()
		cfg.Throttle.Driver = config.ThrottleNone
		th, _, err := buildThrottle(context.Background(), cfg, logger)
		require.NoError(t, err)
		assert.Nil(t, th)
	})

	t.Run("redis with malformed url", func(t *testing.T) {
		cfg := serveConfig()
		cfg.Throttle.Driver = config.ThrottleRedis
		cfg.Throttle.RedisURL = "http://not-redis"
		_, _, err := buildThrottle(context.Background(), cfg, logger)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})
}

func TestBuildNotifier(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	cfg := serveConfig()
	n, err := buildNotifier(cfg, logger)
	require.NoError(t, err)
	assert.NotNil(t, n)

	cfg.Mail.Driver = config.MailSMTP
	_, err = buildNotifier(cfg, logger)
	errutil.AssertErrorCode(t, err, "NOTIFY_CONFIG_INVALID")
}

func TestBuildImageStore_None(t *testing.T) {
	images, err := buildImageStore(context.Background(), serveConfig(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Nil(t, images)
}

func TestMonitorServerErrors(t *testing.T) {
	t.Run("error cancels", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		errCh <- errors.New("boom")
		monitorServerErrors(ctx, cancel, errCh, "test")
		assert.Error(t, ctx.Err())
	})

	t.Run("closed channel does not cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		errCh := make(chan error)
		close(errCh)
		monitorServerErrors(ctx, cancel, errCh, "test")
		assert.NoError(t, ctx.Err())
	})
}
