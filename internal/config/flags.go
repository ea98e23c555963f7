// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package config

import "github.com/spf13/pflag"

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"addr":         "server.addr",
	"metrics-addr": "server.metrics_addr",
	"log-format":   "log.format",
	"log-level":    "log.level",
	"store-driver": "store.driver",
	"database-url": "store.postgres_url",
	"mongo-url":    "store.mongo_url",
	"frontend-url": "frontend_url",
	"auto-migrate": "store.auto_migrate",
}

// RegisterFlags declares the overridable settings on fs. Defaults shown in
// help are the built-in ones; unset flags never override file or env values.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.String("addr", def.Server.Addr, "API listen address")
	fs.String("metrics-addr", def.Server.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", def.Log.Format, "log format (json or text)")
	fs.String("log-level", def.Log.Level, "log level (debug, info, warn, error)")
	fs.String("store-driver", def.Store.Driver, "user store driver (postgres or mongo)")
	fs.String("database-url", "", "PostgreSQL connection URL")
	fs.String("mongo-url", "", "MongoDB connection URI")
	fs.String("frontend-url", def.FrontendURL, "base URL for password reset links")
	fs.Bool("auto-migrate", false, "apply pending migrations on startup")
}
