package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFilesLayering(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port":"9000","db_driver":"postgres","rate_limit":50}`), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("APP_PORT=9100\nJWT_SECRET=\"s3cret\"\n# comment\n"), 0o644))

	t.Setenv("BASE_URL", "https://diamant-rouge.test/")

	require.NoError(t, loadFromFiles(jsonPath, envPath))
	t.Cleanup(func() {
		mu.Lock()
		values = defaultValues()
		mu.Unlock()
	})

	assert.Equal(t, "9100", get("APP_PORT", ""))
	assert.Equal(t, "postgres", get("DB_DRIVER", ""))
	assert.Equal(t, "s3cret", get("JWT_SECRET", ""))
	assert.Equal(t, "50", get("RATE_LIMIT", ""))
	assert.Equal(t, "https://diamant-rouge.test/", get("BASE_URL", ""))
}

func TestLoadFromFilesMissingIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, ".env")))
	t.Cleanup(func() {
		mu.Lock()
		values = defaultValues()
		mu.Unlock()
	})
	assert.Equal(t, defaultAppPort, get("APP_PORT", ""))
}

func TestTypedGetters(t *testing.T) {
	Set("QUEUE_WORKERS", "7")
	Set("JWT_TTL", "90m")
	Set("DB_DRIVER", "oracle")
	t.Cleanup(func() {
		Set("QUEUE_WORKERS", "4")
		Set("JWT_TTL", "24h")
		Set("DB_DRIVER", defaultDatabaseDriver)
	})

	assert.Equal(t, 7, QueueWorkers())
	assert.Equal(t, 90*time.Minute, JWTTTL())
	assert.Equal(t, "sqlite", DatabaseDriver(), "unknown drivers fall back to sqlite")
	assert.Equal(t, defaultSQLiteDSN, DatabaseDSN())
}
