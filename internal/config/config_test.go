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
	for _, key := range []string{"DB_PATH", "PORT", "APP_ENV", "LOG_LEVEL", "OFFICE_NAME", "TIMEZONE", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, defaultDBPath, cfg.DBPath)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, int64(defaultMaxUploadBytes), cfg.MaxUploadBytes)
	assert.True(t, cfg.IsDev())
	require.NotNil(t, cfg.Location)
	assert.Equal(t, defaultTimezone, cfg.Location.String())
}

func TestLoadFrom_DotenvValuesAndQuotes(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := []byte(`
# comment

PORT=9090
export APP_ENV=production
OFFICE_NAME="Delgado & Sampaio"
TIMEZONE='UTC'
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "Delgado & Sampaio", cfg.OfficeName)
	assert.Equal(t, "UTC", cfg.Location.String())
}

func TestLoadFrom_EnvironmentWinsOverDotenv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\n"), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
}

func TestLoadFrom_RejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("TIMEZONE", "Nowhere/Atlantis")
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("MAX_UPLOAD_BYTES", "0")
	_, err = LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
