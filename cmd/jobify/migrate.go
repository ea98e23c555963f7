// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/Hananem/Jobify-backend/internal/config"
	"github.com/Hananem/Jobify-backend/internal/store"
)

// migrator is the subset of *store.Migrator the migrate commands drive.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Force(version int) error
	Status() (store.MigrationStatus, error)
	Close() error
}

// newMigrator opens a migrator; tests replace it.
var newMigrator = func(databaseURL string) (migrator, error) {
	return store.NewMigrator(databaseURL)
}

// NewMigrateCmd creates the migrate command group.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
		Long: `Apply, roll back or inspect the embedded PostgreSQL migrations.
Without a subcommand, all pending migrations are applied.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m migrator) error {
				return migrateUp(cmd, m)
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m migrator) error {
				return migrateUp(cmd, m)
			})
		},
	})
	cmd.AddCommand(newMigrateDownCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "steps N",
		Short: "Apply N migrations, or roll back when N is negative",
		Long: `Apply N migrations, or roll back when N is negative.
Separate a negative count from the flags: jobify migrate steps -- -1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseSteps(args[0])
			if err != nil {
				return err
			}
			return withMigrator(cmd, func(m migrator) error {
				if err := m.Steps(n); err != nil {
					return err
				}
				cmd.Printf("Moved %d migration(s)\n", n)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied without running it",
		Long: `Record VERSION as the current schema version and clear the dirty flag.
Use this only after repairing a failed migration by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			return withMigrator(cmd, func(m migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				cmd.Printf("Forced schema version to %d\n", version)
				return nil
			})
		},
	})
	cmd.AddCommand(newMigrateStatusCmd())

	return cmd
}

func newMigrateDownCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return oops.Code("CONFIRMATION_REQUIRED").Errorf("migrate down deletes all data; pass --yes to continue")
			}
			return withMigrator(cmd, func(m migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("All migrations rolled back")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm dropping the schema")
	return cmd
}

func newMigrateStatusCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m migrator) error {
				status, err := m.Status()
				if err != nil {
					return err
				}
				if jsonOutput {
					data, err := json.MarshalIndent(status, "", "  ")
					if err != nil {
						return oops.Code("ENCODE_FAILED").Wrap(err)
					}
					cmd.Println(string(data))
					return nil
				}
				cmd.Print(formatMigrationStatus(status))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output status as JSON")
	return cmd
}

func migrateUp(cmd *cobra.Command, m migrator) error {
	before, err := m.Status()
	if err != nil {
		return err
	}
	if len(before.Pending) == 0 {
		cmd.Println("Schema is up to date")
		return nil
	}
	cmd.Printf("Applying %d migration(s)...\n", len(before.Pending))
	if err := m.Up(); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}

// withMigrator opens a migrator for the configured database, runs fn and closes it.
func withMigrator(cmd *cobra.Command, fn func(migrator) error) error {
	databaseURL, err := getDatabaseURL(cmd)
	if err != nil {
		return err
	}
	m, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			cmd.PrintErrln("warning: failed to close migrator:", closeErr)
		}
	}()
	return fn(m)
}

// getDatabaseURL resolves the PostgreSQL URL from configuration.
func getDatabaseURL(cmd *cobra.Command) (string, error) {
	cfg, err := loadConfigUnvalidated(cmd)
	if err != nil {
		return "", err
	}
	if cfg.Store.Driver != config.StorePostgres {
		return "", oops.Code("CONFIG_INVALID").
			With("field", "store.driver").
			Errorf("migrations apply to the postgres store only, got %q", cfg.Store.Driver)
	}
	if cfg.Store.PostgresURL == "" {
		return "", oops.Code("CONFIG_INVALID").
			With("field", "store.postgres_url").
			Errorf("database URL is required (DATABASE_URL, JOBIFY_STORE__POSTGRES_URL or --database-url)")
	}
	return cfg.Store.PostgresURL, nil
}

// parseForceVersion parses a non-negative version number.
func parseForceVersion(s string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(s, "%d", &version); err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("version must be an integer: %q", s)
	}
	if version < 0 {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("version must be non-negative, got %d", version)
	}
	return version, nil
}

// parseSteps parses a non-zero step count.
func parseSteps(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n); err != nil || n == 0 {
		return 0, oops.Code("INVALID_STEPS").With("input", s).Errorf("steps must be a non-zero integer: %q", s)
	}
	return n, nil
}

func formatMigrationStatus(s store.MigrationStatus) string {
	var b strings.Builder
	name := s.Name
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(&b, "Version: %d (%s)\n", s.Version, name)
	if s.Dirty {
		b.WriteString("State:   dirty (run 'jobify migrate force VERSION' after repairing)\n")
	} else {
		b.WriteString("State:   clean\n")
	}
	fmt.Fprintf(&b, "Applied: %d\n", len(s.Applied))
	fmt.Fprintf(&b, "Pending: %d\n", len(s.Pending))
	for _, v := range s.Pending {
		pendingName, err := store.MigrationName(v)
		if err != nil || pendingName == "" {
			pendingName = fmt.Sprintf("%06d", v)
		}
		fmt.Fprintf(&b, "  - %s\n", pendingName)
	}
	return b.String()
}
