package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 16, cfg.Node.NumTokens)
	require.Len(t, cfg.Keyspaces, 1)
	assert.Equal(t, "org.apache.cassandra.locator.SimpleStrategy", cfg.Keyspaces[0].Class)
	assert.Equal(t, "1", cfg.Keyspaces[0].Options["replication_factor"])
}

func TestLoad_MissingExplicitPathFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_MissingDefaultPathFallsBack(t *testing.T) {
	t.Setenv("ENV", "does-not-exist")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Addr, cfg.Server.Addr)
}
