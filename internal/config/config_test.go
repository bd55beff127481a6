package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err, "a missing config file falls back to defaults")

	assert.Equal(t, ".codescout/index", cfg.SnapshotDir)
	assert.Equal(t, 50, cfg.Embedding.BatchSize)
	assert.Equal(t, 10000, cfg.Embedding.CacheSize)
	assert.Equal(t, 10, cfg.Search.DefaultK)
	assert.Equal(t, 4000, cfg.Search.MaxContextChars)
	assert.False(t, cfg.Debug)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
snapshot_dir: /tmp/idx
debug: true
embedding:
  provider: hashed
  dimension: 128
search:
  default_k: 5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/idx", cfg.SnapshotDir)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "hashed", cfg.Embedding.Provider)
	assert.Equal(t, 128, cfg.Embedding.Dimension)
	assert.Equal(t, 5, cfg.Search.DefaultK)
	assert.Equal(t, 50, cfg.Embedding.BatchSize, "unset keys keep their defaults")
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("snapshot_dir: /from/file\n"), 0o644))

	t.Setenv("CODESCOUT_SNAPSHOT_DIR", "/from/env")
	t.Setenv("CODESCOUT_EMBEDDING__PROVIDER", "jina")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.SnapshotDir, "environment beats the file")
	assert.Equal(t, "jina", cfg.Embedding.Provider)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("snapshot_dir: [unclosed\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.SnapshotDir = "/custom/dir"
	cfg.Embedding.Provider = "hashed"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.SnapshotDir, loaded.SnapshotDir)
	assert.Equal(t, cfg.Embedding.Provider, loaded.Embedding.Provider)
}
