// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hananem/Jobify-backend/pkg/errutil"
)

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, SchemaID, doc["$id"])
	assert.Equal(t, false, doc["additionalProperties"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"server", "log", "auth", "store", "mail", "images", "throttle", "frontend_url"} {
		assert.Contains(t, props, key)
	}

	auth := props["auth"].(map[string]any)["properties"].(map[string]any)
	expiry := auth["reset_expiry"].(map[string]any)
	assert.Equal(t, "string", expiry["type"], "durations are strings")
}

func TestValidateYAML(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty document", "", ""},
		{"partial document", "log:\n  level: debug\n", ""},
		{"nested drivers", "images:\n  driver: s3\n  s3:\n    bucket: photos\n", ""},
		{"duration units", "throttle:\n  window: 1h30m\n", ""},
		{"malformed yaml", "server: [", "CONFIG_YAML_INVALID"},
		{"unknown section", "cache:\n  ttl: 5m\n", "CONFIG_SCHEMA_INVALID"},
		{"negative limit", "throttle:\n  limit: -1\n", "CONFIG_SCHEMA_INVALID"},
		{"bad store driver", "store:\n  driver: sqlite\n", "CONFIG_SCHEMA_INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateYAML([]byte(tt.yaml))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			errutil.AssertErrorCode(t, err, tt.wantErr)
		})
	}
}
