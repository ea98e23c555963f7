// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/Hananem/Jobify-backend/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Jobify CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobify",
		Short: "Jobify - job board identity service",
		Long: `Jobify serves user registration, login, profiles and password
recovery for the job board over a JSON HTTP API.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/jobify/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewUserCmd())
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

// loadConfig loads and validates configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(config.LoadOptions{File: configFile, Flags: cmd.Flags()})
}

// loadConfigUnvalidated is loadConfig for commands that need only part of it.
func loadConfigUnvalidated(cmd *cobra.Command) (*config.Config, error) {
	return config.LoadUnvalidated(config.LoadOptions{File: configFile, Flags: cmd.Flags()})
}
