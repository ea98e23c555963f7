// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hananem/Jobify-backend/internal/store"
	"github.com/Hananem/Jobify-backend/pkg/errutil"
)

type fakeMigrator struct {
	status store.MigrationStatus
	upErr  error
	calls  []string
	steps  int
	forced int
	closed bool
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	return f.upErr
}

func (f *fakeMigrator) Down() error {
	f.calls = append(f.calls, "down")
	return nil
}

func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	f.steps = n
	return nil
}

func (f *fakeMigrator) Force(version int) error {
	f.calls = append(f.calls, "force")
	f.forced = version
	return nil
}

func (f *fakeMigrator) Status() (store.MigrationStatus, error) {
	return f.status, nil
}

func (f *fakeMigrator) Close() error {
	f.closed = true
	return nil
}

// useFakeMigrator swaps newMigrator for the duration of the test.
func useFakeMigrator(t *testing.T, m *fakeMigrator) *string {
	t.Helper()
	isolateEnv(t)
	var gotURL string
	orig := newMigrator
	newMigrator = func(databaseURL string) (migrator, error) {
		gotURL = databaseURL
		return m, nil
	}
	t.Cleanup(func() { newMigrator = orig })
	return &gotURL
}

func TestMigrateUp(t *testing.T) {
	m := &fakeMigrator{status: store.MigrationStatus{Applied: []uint{1}, Pending: []uint{2, 3}}}
	gotURL := useFakeMigrator(t, m)
	t.Setenv("DATABASE_URL", "postgres://localhost/jobify")

	out, err := execute(t, "", "migrate", "up")
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/jobify", *gotURL)
	assert.Equal(t, []string{"up"}, m.calls)
	assert.True(t, m.closed)
	assert.Contains(t, out, "Applying 2 migration(s)")
	assert.Contains(t, out, "Migrations completed successfully")
}

func TestMigrate_BareCommandRunsUp(t *testing.T) {
	m := &fakeMigrator{}
	useFakeMigrator(t, m)

	out, err := execute(t, "", "migrate", "--database-url", "postgres://flag/jobify")
	require.NoError(t, err)
	assert.Empty(t, m.calls)
	assert.Contains(t, out, "Schema is up to date")
}

func TestMigrateUp_Failure(t *testing.T) {
	m := &fakeMigrator{
		status: store.MigrationStatus{Pending: []uint{1}},
		upErr:  oops.Code("MIGRATION_UP_FAILED").Wrap(errors.New("syntax error")),
	}
	useFakeMigrator(t, m)
	t.Setenv("DATABASE_URL", "postgres://localhost/jobify")

	_, err := execute(t, "", "migrate", "up")
	errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
	assert.True(t, m.closed)
}

func TestMigrateDown_RequiresConfirmation(t *testing.T) {
	m := &fakeMigrator{}
	useFakeMigrator(t, m)
	t.Setenv("DATABASE_URL", "postgres://localhost/jobify")

	_, err := execute(t, "", "migrate", "down")
	errutil.AssertErrorCode(t, err, "CONFIRMATION_REQUIRED")
	assert.Empty(t, m.calls)

	out, err := execute(t, "", "migrate", "down", "--yes")
	require.NoError(t, err)
	assert.Equal(t, []string{"down"}, m.calls)
	assert.Contains(t, out, "rolled back")
}

func TestMigrateSteps(t *testing.T) {
	m := &fakeMigrator{}
	useFakeMigrator(t, m)
	t.Setenv("DATABASE_URL", "postgres://localhost/jobify")

	_, err := execute(t, "", "migrate", "steps", "--", "-1")
	require.NoError(t, err)
	assert.Equal(t, -1, m.steps)

	_, err = execute(t, "", "migrate", "steps", "0")
	errutil.AssertErrorCode(t, err, "INVALID_STEPS")
}

func TestMigrateForce(t *testing.T) {
	m := &fakeMigrator{}
	useFakeMigrator(t, m)
	t.Setenv("DATABASE_URL", "postgres://localhost/jobify")

	out, err := execute(t, "", "migrate", "force", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, m.forced)
	assert.Contains(t, out, "Forced schema version to 2")
}

func TestMigrateStatus(t *testing.T) {
	m := &fakeMigrator{status: store.MigrationStatus{
		Version: 1,
		Name:    "000001_create_users",
		Dirty:   true,
		Applied: []uint{1},
		Pending: []uint{99},
	}}
	useFakeMigrator(t, m)
	t.Setenv("DATABASE_URL", "postgres://localhost/jobify")

	out, err := execute(t, "", "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: 1 (000001_create_users)")
	assert.Contains(t, out, "dirty")
	assert.Contains(t, out, "Pending: 1")
	assert.Contains(t, out, "000099")

	out, err = execute(t, "", "migrate", "status", "--json")
	require.NoError(t, err)
	var decoded store.MigrationStatus
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, m.status, decoded)
}

func TestGetDatabaseURL(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantURL   string
		wantField string
	}{
		{
			name:      "missing url",
			wantField: "store.postgres_url",
		},
		{
			name:    "legacy variable",
			env:     map[string]string{"DATABASE_URL": "postgres://legacy/jobify"},
			wantURL: "postgres://legacy/jobify",
		},
		{
			name: "prefixed variable wins",
			env: map[string]string{
				"DATABASE_URL":               "postgres://legacy/jobify",
				"JOBIFY_STORE__POSTGRES_URL": "postgres://prefixed/jobify",
			},
			wantURL: "postgres://prefixed/jobify",
		},
		{
			name:      "mongo store has no migrations",
			env:       map[string]string{"JOBIFY_STORE__DRIVER": "mongo"},
			wantField: "store.driver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cmd := NewRootCmd()
			require.NoError(t, cmd.ParseFlags(nil))

			url, err := getDatabaseURL(cmd)
			if tt.wantField != "" {
				errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
				errutil.AssertErrorContext(t, err, "field", tt.wantField)
				assert.Empty(t, url)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, url)
		})
	}
}

func TestParseForceVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "3", want: 3},
		{input: "0", want: 0},
		{input: "  42", want: 42},
		{input: "abc", wantErr: true},
		{input: "", wantErr: true},
		{input: "-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseForceVersion(tt.input)
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, "INVALID_VERSION")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSteps(t *testing.T) {
	n, err := parseSteps(" -2 ")
	require.NoError(t, err)
	assert.Equal(t, -2, n)

	for _, bad := range []string{"0", "x", ""} {
		_, err := parseSteps(bad)
		errutil.AssertErrorCode(t, err, "INVALID_STEPS")
	}
}
