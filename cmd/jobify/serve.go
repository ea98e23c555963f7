// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/Hananem/Jobify-backend/internal/config"
	"github.com/Hananem/Jobify-backend/internal/httpapi"
	"github.com/Hananem/Jobify-backend/internal/identity"
	"github.com/Hananem/Jobify-backend/internal/logging"
	"github.com/Hananem/Jobify-backend/internal/observability"
	"github.com/Hananem/Jobify-backend/internal/xdg"
)

const (
	serviceName       = "jobify"
	readHeaderTimeout = 10 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server. It connects to the configured user store,
serves the /api/users routes and, unless metrics_addr is empty, a
metrics and health endpoint.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}
}

func (d *ServeDeps) withDefaults() {
	if d.StoreFactory == nil {
		d.StoreFactory = openStore
	}
	if d.NotifierFactory == nil {
		d.NotifierFactory = buildNotifier
	}
	if d.ImageStoreFactory == nil {
		d.ImageStoreFactory = buildImageStore
	}
	if d.ThrottleFactory == nil {
		d.ThrottleFactory = buildThrottle
	}
	if d.ObservabilityServerFactory == nil {
		d.ObservabilityServerFactory = func(addr string, readiness observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, readiness, logger)
		}
	}
	if d.ListenerFactory == nil {
		d.ListenerFactory = net.Listen
	}
	if d.UploadDirGetter == nil {
		d.UploadDirGetter = xdg.UploadDir
	}
}

// runServeWithDeps starts the API server with injectable dependencies and
// blocks until ctx is cancelled, a signal arrives or a server fails.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	deps.withDefaults()

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := logging.SetDefault(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.Log.Format,
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
	})

	logger.Info("starting jobify",
		"addr", cfg.Server.Addr,
		"store", cfg.Store.Driver,
		"config", cfg.Source(),
	)

	users, closeStore, err := deps.StoreFactory(ctx, cfg, logger)
	if err != nil {
		return oops.With("operation", "open user store").Wrap(err)
	}
	if closeStore != nil {
		defer closeStore()
	}

	notifier, err := deps.NotifierFactory(cfg, logger)
	if err != nil {
		return oops.With("operation", "build notifier").Wrap(err)
	}
	images, err := deps.ImageStoreFactory(ctx, cfg, logger)
	if err != nil {
		return oops.With("operation", "build image store").Wrap(err)
	}
	if images == nil {
		logger.Info("profile photo uploads disabled")
	}
	resetThrottle, closeThrottle, err := deps.ThrottleFactory(ctx, cfg, logger)
	if err != nil {
		return oops.With("operation", "build reset throttle").Wrap(err)
	}
	if closeThrottle != nil {
		defer closeThrottle()
	}

	uploadDir, err := deps.UploadDirGetter()
	if err != nil {
		return err
	}
	if err := xdg.EnsureDir(uploadDir); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var obsServer ObservabilityServer
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	if cfg.Server.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Server.MetricsAddr, users.Ping, logger)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.With("operation", "start observability server").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		metrics = obsServer.Metrics()
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	handler, err := buildHandler(cfg, users, notifier, images, resetThrottle, metrics, uploadDir, logger)
	if err != nil {
		stopObservability(obsServer, cfg.Server.ShutdownTimeout)
		return err
	}

	listener, err := deps.ListenerFactory("tcp", cfg.Server.Addr)
	if err != nil {
		stopObservability(obsServer, cfg.Server.ShutdownTimeout)
		return oops.Code("LISTEN_FAILED").With("addr", cfg.Server.Addr).Wrap(err)
	}

	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	cmd.Println("Jobify API listening on " + listener.Addr().String())
	logger.Info("api server ready", "addr", listener.Addr().String())

	var serveErr error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errChan:
		serveErr = oops.Code("SERVE_FAILED").Wrap(err)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	stopObservability(obsServer, cfg.Server.ShutdownTimeout)

	logger.Info("shutdown complete")
	return serveErr
}

func buildHandler(
	cfg *config.Config,
	users identity.UserStore,
	notifier identity.Notifier,
	images identity.ImageStore,
	resetThrottle identity.ResetThrottle,
	metrics *observability.Metrics,
	uploadDir string,
	logger *slog.Logger,
) (http.Handler, error) {
	hasher := identity.NewArgon2idHasher()
	signer, err := identity.NewJWTSigner([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return nil, err
	}

	opts := []identity.Option{
		identity.WithLogger(logger),
		identity.WithEventRecorder(metrics),
	}
	credentials, err := identity.NewCredentialService(users, hasher, signer, opts...)
	if err != nil {
		return nil, err
	}

	recoveryOpts := slices.Clone(opts)
	if resetThrottle != nil {
		recoveryOpts = append(recoveryOpts, identity.WithResetThrottle(resetThrottle))
	}
	codec := identity.NewResetTokenCodec(identity.WithResetExpiry(cfg.Auth.ResetExpiry))
	recovery, err := identity.NewRecoveryFlow(users, hasher, codec, notifier, cfg.FrontendURL, recoveryOpts...)
	if err != nil {
		return nil, err
	}

	merger, err := identity.NewProfileMerger(hasher, nil)
	if err != nil {
		return nil, err
	}
	profiles, err := identity.NewUserService(users, merger, images, opts...)
	if err != nil {
		return nil, err
	}

	return httpapi.NewRouter(httpapi.Deps{
		Credentials: credentials,
		Recovery:    recovery,
		Profiles:    profiles,
		Signer:      signer,
	}, httpapi.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		UploadDir:      uploadDir,
		Logger:         logger,
		Observer:       metrics,
	})
}

func stopObservability(server ObservabilityServer, timeout time.Duration) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		slog.Warn("error stopping observability server", "error", err)
	}
}

// monitorServerErrors cancels ctx when a server reports an error. It exits
// when an error is received, the channel is closed or ctx is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
