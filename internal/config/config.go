// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

// Package config loads Jobify configuration from defaults, a YAML file,
// the environment and command-line flags, in increasing precedence.
package config

import (
	"net/url"
	"time"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Mail drivers.
const (
	MailLog  = "log"
	MailSMTP = "smtp"
)

// Image drivers.
const (
	ImagesNone       = "none"
	ImagesCloudinary = "cloudinary"
	ImagesS3         = "s3"
)

// Throttle drivers.
const (
	ThrottleNone   = "none"
	ThrottleMemory = "memory"
	ThrottleRedis  = "redis"
)

// MinJWTSecretLength is the shortest accepted HS256 secret, in bytes.
const MinJWTSecretLength = 32

const redacted = "********"

// Config is the complete service configuration.
type Config struct {
	Server      ServerConfig   `koanf:"server" yaml:"server"`
	Log         LogConfig      `koanf:"log" yaml:"log"`
	Auth        AuthConfig     `koanf:"auth" yaml:"auth"`
	Store       StoreConfig    `koanf:"store" yaml:"store"`
	Mail        MailConfig     `koanf:"mail" yaml:"mail"`
	Images      ImagesConfig   `koanf:"images" yaml:"images"`
	Throttle    ThrottleConfig `koanf:"throttle" yaml:"throttle"`
	FrontendURL string         `koanf:"frontend_url" yaml:"frontend_url" jsonschema:"description=Base URL used in password reset links"`

	source string
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	Addr            string        `koanf:"addr" yaml:"addr" jsonschema:"description=API listen address"`
	MetricsAddr     string        `koanf:"metrics_addr" yaml:"metrics_addr" jsonschema:"description=Metrics and health listen address; empty disables it"`
	CORSOrigins     []string      `koanf:"cors_origins" yaml:"cors_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `koanf:"max_upload_bytes" yaml:"max_upload_bytes" jsonschema:"minimum=1"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format" yaml:"format" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" yaml:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// AuthConfig configures session and reset tokens.
type AuthConfig struct {
	JWTSecret   string        `koanf:"jwt_secret" yaml:"jwt_secret"`
	ResetExpiry time.Duration `koanf:"reset_expiry" yaml:"reset_expiry"`
}

// StoreConfig selects and configures the user store.
type StoreConfig struct {
	Driver          string `koanf:"driver" yaml:"driver" jsonschema:"enum=postgres,enum=mongo"`
	PostgresURL     string `koanf:"postgres_url" yaml:"postgres_url"`
	MongoURL        string `koanf:"mongo_url" yaml:"mongo_url"`
	MongoDatabase   string `koanf:"mongo_database" yaml:"mongo_database"`
	MaxConns        int32  `koanf:"max_conns" yaml:"max_conns" jsonschema:"minimum=0"`
	ConnectAttempts uint64 `koanf:"connect_attempts" yaml:"connect_attempts" jsonschema:"minimum=1"`
	AutoMigrate     bool   `koanf:"auto_migrate" yaml:"auto_migrate"`
}

// MailConfig selects and configures outbound mail.
type MailConfig struct {
	Driver   string `koanf:"driver" yaml:"driver" jsonschema:"enum=log,enum=smtp"`
	Host     string `koanf:"host" yaml:"host"`
	Port     int    `koanf:"port" yaml:"port" jsonschema:"minimum=0,maximum=65535"`
	Username string `koanf:"username" yaml:"username"`
	Password string `koanf:"password" yaml:"password"`
	From     string `koanf:"from" yaml:"from"`
}

// ImagesConfig selects and configures profile photo storage.
type ImagesConfig struct {
	Driver     string           `koanf:"driver" yaml:"driver" jsonschema:"enum=none,enum=cloudinary,enum=s3"`
	Cloudinary CloudinaryConfig `koanf:"cloudinary" yaml:"cloudinary"`
	S3         S3Config         `koanf:"s3" yaml:"s3"`
}

// CloudinaryConfig holds Cloudinary credentials.
type CloudinaryConfig struct {
	CloudName string `koanf:"cloud_name" yaml:"cloud_name"`
	APIKey    string `koanf:"api_key" yaml:"api_key"`
	APISecret string `koanf:"api_secret" yaml:"api_secret"`
	Folder    string `koanf:"folder" yaml:"folder"`
}

// S3Config holds S3 bucket settings. Endpoint is set for S3-compatible stores.
type S3Config struct {
	Bucket    string `koanf:"bucket" yaml:"bucket"`
	Region    string `koanf:"region" yaml:"region"`
	Endpoint  string `koanf:"endpoint" yaml:"endpoint"`
	AccessKey string `koanf:"access_key" yaml:"access_key"`
	SecretKey string `koanf:"secret_key" yaml:"secret_key"`
	PublicURL string `koanf:"public_url" yaml:"public_url"`
	Prefix    string `koanf:"prefix" yaml:"prefix"`
}

// ThrottleConfig limits password reset requests per email.
type ThrottleConfig struct {
	Driver   string        `koanf:"driver" yaml:"driver" jsonschema:"enum=none,enum=memory,enum=redis"`
	RedisURL string        `koanf:"redis_url" yaml:"redis_url"`
	Limit    int64         `koanf:"limit" yaml:"limit" jsonschema:"minimum=1"`
	Window   time.Duration `koanf:"window" yaml:"window"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":4000",
			MetricsAddr:     "127.0.0.1:9100",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Log: LogConfig{Format: "json", Level: "info"},
		Auth: AuthConfig{
			ResetExpiry: time.Hour,
		},
		Store: StoreConfig{
			Driver:          StorePostgres,
			MongoDatabase:   "jobify",
			ConnectAttempts: 5,
		},
		Mail: MailConfig{Driver: MailLog, Port: 587},
		Images: ImagesConfig{
			Driver:     ImagesNone,
			Cloudinary: CloudinaryConfig{Folder: "jobify"},
			S3:         S3Config{Prefix: "profile-photos"},
		},
		Throttle: ThrottleConfig{
			Driver: ThrottleMemory,
			Limit:  5,
			Window: 15 * time.Minute,
		},
		FrontendURL: "http://localhost:3000",
	}
}

// Source returns the config file that was loaded, or "" if none was.
func (c *Config) Source() string {
	return c.source
}

// Validate checks cross-field constraints the schema cannot express.
func (c *Config) Validate() error {
	invalid := func(field, format string, args ...any) error {
		return oops.Code("CONFIG_INVALID").With("field", field).Errorf(format, args...)
	}

	if c.Server.Addr == "" {
		return invalid("server.addr", "server.addr is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format", "log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		return invalid("auth.jwt_secret", "auth.jwt_secret must be at least %d bytes", MinJWTSecretLength)
	}
	if c.Auth.ResetExpiry <= 0 {
		return invalid("auth.reset_expiry", "auth.reset_expiry must be positive")
	}
	if _, err := url.ParseRequestURI(c.FrontendURL); err != nil || c.FrontendURL == "" {
		return invalid("frontend_url", "frontend_url must be an absolute URL, got %q", c.FrontendURL)
	}

	switch c.Store.Driver {
	case StorePostgres:
		if c.Store.PostgresURL == "" {
			return invalid("store.postgres_url", "store.postgres_url is required for the postgres driver")
		}
	case StoreMongo:
		if c.Store.MongoURL == "" {
			return invalid("store.mongo_url", "store.mongo_url is required for the mongo driver")
		}
		if c.Store.MongoDatabase == "" {
			return invalid("store.mongo_database", "store.mongo_database is required for the mongo driver")
		}
	default:
		return invalid("store.driver", "store.driver must be 'postgres' or 'mongo', got %q", c.Store.Driver)
	}

	switch c.Mail.Driver {
	case MailLog:
	case MailSMTP:
		if c.Mail.Host == "" || c.Mail.From == "" {
			return invalid("mail", "mail.host and mail.from are required for the smtp driver")
		}
	default:
		return invalid("mail.driver", "mail.driver must be 'log' or 'smtp', got %q", c.Mail.Driver)
	}

	switch c.Images.Driver {
	case ImagesNone:
	case ImagesCloudinary:
		cld := c.Images.Cloudinary
		if cld.CloudName == "" || cld.APIKey == "" || cld.APISecret == "" {
			return invalid("images.cloudinary", "cloud_name, api_key and api_secret are required for the cloudinary driver")
		}
	case ImagesS3:
		if c.Images.S3.Bucket == "" || c.Images.S3.Region == "" {
			return invalid("images.s3", "images.s3.bucket and images.s3.region are required for the s3 driver")
		}
		if c.Images.S3.PublicURL == "" {
			return invalid("images.s3.public_url", "images.s3.public_url is required for the s3 driver")
		}
	default:
		return invalid("images.driver", "images.driver must be 'none', 'cloudinary' or 's3', got %q", c.Images.Driver)
	}

	switch c.Throttle.Driver {
	case ThrottleNone:
	case ThrottleMemory, ThrottleRedis:
		if c.Throttle.Driver == ThrottleRedis && c.Throttle.RedisURL == "" {
			return invalid("throttle.redis_url", "throttle.redis_url is required for the redis driver")
		}
		if c.Throttle.Limit <= 0 || c.Throttle.Window <= 0 {
			return invalid("throttle", "throttle.limit and throttle.window must be positive")
		}
	default:
		return invalid("throttle.driver", "throttle.driver must be 'none', 'memory' or 'redis', got %q", c.Throttle.Driver)
	}

	return nil
}

// Redacted returns a copy with secrets and URL passwords masked.
func (c Config) Redacted() Config {
	out := c
	out.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	mask(&out.Auth.JWTSecret)
	mask(&out.Mail.Password)
	mask(&out.Images.Cloudinary.APISecret)
	mask(&out.Images.S3.SecretKey)
	out.Store.PostgresURL = redactURL(out.Store.PostgresURL)
	out.Store.MongoURL = redactURL(out.Store.MongoURL)
	out.Throttle.RedisURL = redactURL(out.Throttle.RedisURL)
	return out
}

// YAML renders the redacted configuration.
func (c Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return nil, oops.Code("CONFIG_ENCODE_FAILED").Wrap(err)
	}
	return data, nil
}

func mask(s *string) {
	if *s != "" {
		*s = redacted
	}
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return redacted
	}
	return u.Redacted()
}
