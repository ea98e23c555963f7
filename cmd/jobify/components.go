// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/Hananem/Jobify-backend/internal/config"
	"github.com/Hananem/Jobify-backend/internal/identity"
	"github.com/Hananem/Jobify-backend/internal/identity/mongostore"
	"github.com/Hananem/Jobify-backend/internal/identity/postgres"
	"github.com/Hananem/Jobify-backend/internal/imagestore"
	"github.com/Hananem/Jobify-backend/internal/notify"
	"github.com/Hananem/Jobify-backend/internal/store"
	"github.com/Hananem/Jobify-backend/internal/throttle"
)

const (
	mongoConnectTimeout = 10 * time.Second
	redisPingTimeout    = 3 * time.Second
	throttleKeyPrefix   = "jobify:reset:"
)

// openStore connects the configured user store. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (identity.UserStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		return openMongoStore(ctx, cfg, logger)
	default:
		return openPostgresStore(ctx, cfg, logger)
	}
}

func openPostgresStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (identity.UserStore, func(), error) {
	if cfg.Store.AutoMigrate {
		if err := runAutoMigrate(cfg.Store.PostgresURL, logger); err != nil {
			return nil, nil, err
		}
	}

	pool, err := store.Connect(ctx, cfg.Store.PostgresURL, store.PoolOptions{
		MaxConns: cfg.Store.MaxConns,
		Attempts: cfg.Store.ConnectAttempts,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to database", "driver", config.StorePostgres)
	return postgres.NewUserRepository(pool), pool.Close, nil
}

func runAutoMigrate(databaseURL string, logger *slog.Logger) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	pending, err := migrator.PendingMigrations()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		logger.Info("database schema is up to date")
		return nil
	}
	logger.Info("applying migrations", "pending", len(pending))
	if err := migrator.Up(); err != nil {
		return oops.With("operation", "auto-migrate").Wrap(err)
	}
	return nil
}

func openMongoStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (identity.UserStore, func(), error) {
	client, err := mongostore.Connect(ctx, cfg.Store.MongoURL, mongoConnectTimeout)
	if err != nil {
		return nil, nil, err
	}
	disconnect := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
		defer cancel()
		if err := client.Disconnect(shutdownCtx); err != nil {
			logger.Warn("failed to disconnect from mongo", "error", err)
		}
	}

	repo := mongostore.NewUserRepository(client.Database(cfg.Store.MongoDatabase))
	if err := repo.EnsureIndexes(ctx); err != nil {
		disconnect()
		return nil, nil, err
	}
	logger.Info("connected to database", "driver", config.StoreMongo, "database", cfg.Store.MongoDatabase)
	return repo, disconnect, nil
}

func buildNotifier(cfg *config.Config, logger *slog.Logger) (identity.Notifier, error) {
	if cfg.Mail.Driver != config.MailSMTP {
		logger.Warn("mail driver is log; reset links are written to the log only")
		return notify.NewLog(logger), nil
	}
	return notify.NewSMTP(notify.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
}

func buildImageStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (identity.ImageStore, error) {
	switch cfg.Images.Driver {
	case config.ImagesCloudinary:
		c := cfg.Images.Cloudinary
		return imagestore.NewCloudinary(c.CloudName, c.APIKey, c.APISecret, c.Folder, logger)
	case config.ImagesS3:
		s := cfg.Images.S3
		return imagestore.NewS3(ctx, imagestore.S3Config{
			Bucket:    s.Bucket,
			Region:    s.Region,
			Endpoint:  s.Endpoint,
			AccessKey: s.AccessKey,
			SecretKey: s.SecretKey,
			PublicURL: s.PublicURL,
			Prefix:    s.Prefix,
		})
	default:
		return nil, nil
	}
}

func buildThrottle(ctx context.Context, cfg *config.Config, logger *slog.Logger) (identity.ResetThrottle, func(), error) {
	limit := int(cfg.Throttle.Limit)
	switch cfg.Throttle.Driver {
	case config.ThrottleRedis:
		opts, err := redis.ParseURL(cfg.Throttle.RedisURL)
		if err != nil {
			return nil, nil, oops.Code("CONFIG_INVALID").With("field", "throttle.redis_url").Wrap(err)
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, reset throttle will fail open until it recovers", "error", err)
		}
		closeClient := func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", "error", err)
			}
		}
		return throttle.NewRedis(client, throttleKeyPrefix, limit, cfg.Throttle.Window), closeClient, nil
	case config.ThrottleMemory:
		return throttle.NewMemory(limit, cfg.Throttle.Window), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}
