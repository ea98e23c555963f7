// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/Hananem/Jobify-backend/internal/xdg"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates levels: JOBIFY_STORE__POSTGRES_URL sets store.postgres_url.
const EnvPrefix = "JOBIFY_"

// legacyEnv maps the variable names the service has always honoured onto
// config keys. JOBIFY_ variables take precedence over them.
var legacyEnv = map[string]string{
	"DATABASE_URL": "store.postgres_url",
	"MONGODB_URI":  "store.mongo_url",
	"JWT_SECRET":   "auth.jwt_secret",
	"FRONTEND_URL": "frontend_url",
	"REDIS_URL":    "throttle.redis_url",
}

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// File is an explicit config file. When empty, the XDG default is used
	// if it exists.
	File string
	// Flags are applied last; only flags set on the command line count.
	Flags *pflag.FlagSet
	// DotEnv lists .env files to load into the process environment before
	// reading it. Nil means ".env"; missing files are ignored.
	DotEnv []string
}

// Load builds the effective configuration and validates it.
func Load(opts LoadOptions) (*Config, error) {
	cfg, err := LoadUnvalidated(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnvalidated is Load without Validate, for commands that only need a
// subset of the configuration.
func LoadUnvalidated(opts LoadOptions) (*Config, error) {
	if err := loadDotEnv(opts.DotEnv); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	path, err := resolveFile(opts.File)
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
		if err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
		if err := ValidateYAML(data); err != nil {
			return nil, oops.Code("CONFIG_SCHEMA_INVALID").With("path", path).Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", legacyKey), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", prefixedKey), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}
	cfg.source = path
	return &cfg, nil
}

func loadDotEnv(files []string) error {
	if files == nil {
		files = []string{".env"}
	}
	for _, name := range files {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return oops.Code("CONFIG_DOTENV_FAILED").With("path", name).Wrap(err)
		}
	}
	return nil
}

func resolveFile(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	path, err := xdg.ConfigFile()
	if err != nil {
		// No home directory means no default file.
		return "", nil //nolint:nilerr // optional default location
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
	}
	return path, nil
}

func legacyKey(name, value string) (string, any) {
	if name == "PORT" && value != "" {
		return "server.addr", ":" + value
	}
	key, ok := legacyEnv[name]
	if !ok || value == "" {
		return "", nil
	}
	return key, value
}

func prefixedKey(name, value string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if key == "server.cors_origins" {
		return key, splitList(value)
	}
	return key, value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
