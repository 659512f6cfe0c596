package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":              "www.example:9000",
		"database_dsn":                    "cliptube.db",
		"access_token_secret":             "a_secret",
		"refresh_token_secret":            "r_secret",
		"access_token_validity_duration":  "15m",
		"refresh_token_validity_duration": "240h",
		"s3_root_user":                    "user",
		"s3_root_password":                "password",
		"s3_bucket":                       "bucket",
		"s3_region":                       "region",
		"s3_base_endpoint":                "base_endpoint",
		"media_base_url":                  "http://media",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "cliptube.db", cfg.DatabaseDSN)
		assert.Equal(t, "a_secret", cfg.AccessTokenSecret)
		assert.Equal(t, "r_secret", cfg.RefreshTokenSecret)
		assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 240*time.Hour, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "http://media", cfg.MediaBaseURL)
	})

	t.Run("no config flag leaves values unchanged", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrHTTP:             "defaults:1234",
			DatabaseDSN:                  "cliptube.db",
			AccessTokenSecret:            "a",
			RefreshTokenSecret:           "r",
			AccessTokenValidityDuration:  2 * time.Minute,
			RefreshTokenValidityDuration: 3 * time.Minute,
			S3RootUser:                   "s3root",
			S3RootPassword:               "s3rootpassword",
			S3Bucket:                     "s3bucket",
			S3Region:                     "s3region",
			S3BaseEndpoint:               "s3baseendpoint",
			MediaBaseURL:                 "http://media",
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "cliptube.db", cfg.DatabaseDSN)
		assert.Equal(t, "a", cfg.AccessTokenSecret)
		assert.Equal(t, "r", cfg.RefreshTokenSecret)
		assert.Equal(t, 2*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 3*time.Minute, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, "s3root", cfg.S3RootUser)
		assert.Equal(t, "s3bucket", cfg.S3Bucket)
		assert.Equal(t, "http://media", cfg.MediaBaseURL)
	})

	t.Run("broken json panics", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
