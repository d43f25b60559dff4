package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "vehiclelog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8080
form:
  cities: [Pune, Agra]
backend:
  timeout: 3s
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigPath)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"Pune", "Agra"}, cfg.Form.Cities)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "vehicle_reports.db", cfg.Database.Path)
	assert.Equal(t, 100, cfg.Backend.JournalSize)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err, "an explicit path must exist")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [1, 2"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("PORT sets server port", func(t *testing.T) {
		t.Setenv("PORT", "9123")
		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, 9123, cfg.Server.Port)
		assert.Equal(t, "0.0.0.0:9123", cfg.Server.Addr())
	})

	t.Run("garbage PORT is ignored", func(t *testing.T) {
		t.Setenv("PORT", "eighty")
		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, 5000, cfg.Server.Port)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Export.Dir = "/tmp/reports"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/reports", loaded.Export.Dir)
	assert.Equal(t, cfg.Form.Cities, loaded.Form.Cities)
}
