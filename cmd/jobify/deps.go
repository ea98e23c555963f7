// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package main

import (
	"context"
	"log/slog"
	"net"

	"github.com/Hananem/Jobify-backend/internal/config"
	"github.com/Hananem/Jobify-backend/internal/identity"
	"github.com/Hananem/Jobify-backend/internal/observability"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// StoreFactory opens the configured user store.
	// Default: openStore
	StoreFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (identity.UserStore, func(), error)

	// NotifierFactory builds the outbound mail transport.
	// Default: buildNotifier
	NotifierFactory func(cfg *config.Config, logger *slog.Logger) (identity.Notifier, error)

	// ImageStoreFactory builds profile photo storage. A nil store disables uploads.
	// Default: buildImageStore
	ImageStoreFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (identity.ImageStore, error)

	// ThrottleFactory builds the reset request limiter. A nil throttle disables limiting.
	// Default: buildThrottle
	ThrottleFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (identity.ResetThrottle, func(), error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readiness observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer

	// ListenerFactory creates the API listener.
	// Default: net.Listen
	ListenerFactory func(network, address string) (net.Listener, error)

	// UploadDirGetter returns the directory multipart uploads are staged in.
	// Default: xdg.UploadDir
	UploadDirGetter func() (string, error)
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}
