package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Relaxed, cfg.Durability)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.Durability = Durable
	cfg.SessionRoot = "/tmp/sessions"

	require.NoError(t, Save(path, cfg))
	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Durable, loaded.Durability)
	assert.Equal(t, "/tmp/sessions", loaded.SessionRoot)
}

func TestValidate_RejectsBadDurability(t *testing.T) {
	cfg := Default()
	cfg.Durability = "sometimes"
	assert.Error(t, cfg.Validate())
}

func TestCheckFormatVersion(t *testing.T) {
	assert.NoError(t, CheckFormatVersion(""))
	assert.NoError(t, CheckFormatVersion("1.0.0"))
	assert.NoError(t, CheckFormatVersion("1.2.3"))
	assert.Error(t, CheckFormatVersion("2.0.0"))
	assert.Error(t, CheckFormatVersion("not-a-version"))
}
