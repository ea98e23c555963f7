// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package store

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsFS_EveryUpHasADown(t *testing.T) {
	entries, err := migrationsFS.ReadDir(migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	pattern := regexp.MustCompile(`^\d{6}_\w+\.(up|down)\.sql$`)
	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		assert.Regexp(t, pattern, entry.Name())
		names[entry.Name()] = true
	}

	for name := range names {
		if base, ok := strings.CutSuffix(name, ".up.sql"); ok {
			assert.True(t, names[base+".down.sql"], "%s has no down migration", base)
		}
	}
}

func TestMigrationsFS_UsersSchema(t *testing.T) {
	up, err := migrationsFS.ReadFile("migrations/000001_create_users.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "users_email_lower_idx ON users (LOWER(email))")

	reset, err := migrationsFS.ReadFile("migrations/000002_profile_photo_and_reset.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(reset), "reset_token_hash")
	assert.Contains(t, string(reset), "users_reset_pair_chk")
}
