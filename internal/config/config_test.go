package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears a variable for the test while restoring it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	for _, key := range []string{"PORT", "DATABASE_PATH", "ALLOWED_ORIGIN", "STATS_SCHEDULE"} {
		unsetEnv(t, key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "./spotly.db", cfg.DatabasePath)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "http://localhost:3000", cfg.AllowedOrigin)
	assert.Equal(t, "@every 30s", cfg.StatsSchedule)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PORT", "9999")
	t.Setenv("DATABASE_PATH", "/tmp/other.db")
	t.Setenv("ALLOWED_ORIGIN", "https://spotly.example")
	t.Setenv("STATS_SCHEDULE", "@every 5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.ServerPort)
	assert.Equal(t, "/tmp/other.db", cfg.DatabasePath)
	assert.Equal(t, "https://spotly.example", cfg.AllowedOrigin)
	assert.Equal(t, "@every 5m", cfg.StatsSchedule)
}

func TestLoad_MissingSecret(t *testing.T) {
	unsetEnv(t, "JWT_SECRET")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BadPort(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
