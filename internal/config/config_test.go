package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "STORE_BACKEND", "FIRESTORE_PROJECT_ID",
		"FIREBASE_CREDENTIALS_FILE", "DATABASE_URL", "REDIS_URL", "SQLITE_PATH",
		"CORS_ALLOWED_ORIGINS", "MAX_BODY_BYTES", "RATE_LIMIT_ENABLED",
		"RATE_LIMIT_WHITELIST", "AUTO_BLOCK_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultsInDevelopment(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8001", cfg.Port)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(65536), cfg.MaxBodyBytes)
	assert.True(t, cfg.StoreEnabled())
}

func TestProductionRequiresBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "STORE_BACKEND is required")
}

func TestExplicitNoneDisablesStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("STORE_BACKEND", "none")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.StoreEnabled())
}

func TestBackendRequirements(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"firestore without project", map[string]string{"STORE_BACKEND": "firestore"}, "FIRESTORE_PROJECT_ID"},
		{"firestore missing credentials", map[string]string{
			"STORE_BACKEND": "firestore", "FIRESTORE_PROJECT_ID": "p",
			"FIREBASE_CREDENTIALS_FILE": "/nonexistent/sa.json",
		}, "not readable"},
		{"redis without url", map[string]string{"STORE_BACKEND": "redis"}, "REDIS_URL"},
		{"postgres without url", map[string]string{"STORE_BACKEND": "postgres"}, "DATABASE_URL"},
		{"unknown backend", map[string]string{"STORE_BACKEND": "mongo"}, "unknown STORE_BACKEND"},
		{"auto block without redis", map[string]string{
			"STORE_BACKEND": "none", "RATE_LIMIT_ENABLED": "true", "AUTO_BLOCK_ENABLED": "true",
		}, "AUTO_BLOCK_ENABLED"},
		{"bad body size", map[string]string{"MAX_BODY_BYTES": "-1"}, "MAX_BODY_BYTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFirestoreWithCredentialsFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	t.Setenv("STORE_BACKEND", "FireStore")
	t.Setenv("FIRESTORE_PROJECT_ID", "sharenear-test")
	t.Setenv("FIREBASE_CREDENTIALS_FILE", path)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, BackendFirestore, cfg.StoreBackend)
}

func TestListParsing(t *testing.T) {
	clearEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.0/8,127.0.0.1")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.RateLimitWhitelist)
}

func TestRateLimitBackendSelection(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_ENABLED", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.RateLimitEnabled)
	assert.False(t, cfg.SharedRateLimit())

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.SharedRateLimit())
}
