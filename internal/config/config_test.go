package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Digital-Defiance/brightchain-off/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestLoadAppliesFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"store":{"backend":"diskfs","root":"/tmp/off"},"tuple":{"size":4,"block_size":"Medium"}}`), 0o644))

	t.Setenv("OFF_TUPLE_SIZE", "5")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "diskfs", cfg.Store.Backend)
	assert.Equal(t, "/tmp/off", cfg.Store.Root)
	assert.Equal(t, 5, cfg.Tuple.Size)
	assert.Equal(t, "Medium", cfg.Tuple.BlockSize)
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "bogus"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsDiskfsWithoutRoot(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "diskfs"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsTupleSizeBelowTwo(t *testing.T) {
	cfg := config.Default()
	cfg.Tuple.Size = 1
	require.Error(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "memdisk", cfg.Store.Backend)
}
