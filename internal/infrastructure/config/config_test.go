package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "8090", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "harborfs", cfg.Store.Scheme)
	assert.Equal(t, 0, cfg.Search.DefaultMaxResults)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("STORE_BACKEND", "disk")
	t.Setenv("STORE_ROOT", "/data/fs")
	t.Setenv("SEARCH_MAX_RESULTS", "250")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "disk", cfg.Store.Backend)
	assert.Equal(t, "/data/fs", cfg.Store.Root)
	assert.Equal(t, 250, cfg.Search.DefaultMaxResults)
	// Untouched fields keep their defaults.
	assert.Equal(t, "harborfs", cfg.Store.Scheme)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
server:
  port: "7070"
store:
  backend: disk
  root: /srv/harborfs
logging:
  level: debug
  development: true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "disk", cfg.Store.Backend)
	assert.Equal(t, "/srv/harborfs", cfg.Store.Root)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	// Values absent from the file stay at their defaults.
	assert.Equal(t, "harborfs", cfg.Store.Scheme)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/no/such/file.yaml")
	require.Error(t, err)
}

func TestLoadFileMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}
