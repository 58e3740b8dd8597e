package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "env: dev\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, DriverJSON, cfg.StorageDriver)
	assert.Equal(t, "db.json", cfg.StoragePath)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "localhost:3000", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoadReadsFile(t *testing.T) {
	path := writeConfig(t, `
env: prod
storage_driver: sqlite
storage_path: /var/lib/learnfast/registrations.db
bcrypt_cost: 12
http_server:
  address: 0.0.0.0:8080
  read_timeout: 3s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "/var/lib/learnfast/registrations.db", cfg.StoragePath)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "env: dev\nstorage_path: from-file.json\n")
	t.Setenv("STORAGE_PATH", "from-env.json")
	t.Setenv("HTTP_SERVER_ADDR", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.json", cfg.StoragePath)
	assert.Equal(t, ":9999", cfg.Addr)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("missing env", func(t *testing.T) {
		_, err := Load(writeConfig(t, "storage_path: db.json\n"))
		require.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Load(writeConfig(t, "env: dev\nstorage_driver: mongo\n"))
		require.ErrorContains(t, err, "unknown storage_driver")
	})
}
