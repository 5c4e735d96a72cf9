package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	home := t.TempDir()
	cfg := DefaultConfig(home)
	require.NotNil(t, cfg.App)
	assert.Equal(t, home, cfg.RootDir)
	assert.Equal(t, home+"/data/indexer.db", cfg.App.IndexerDB)
	assert.Empty(t, cfg.App.IndexerListen)
}

func TestInitializeNodeOnly(t *testing.T) {
	home := t.TempDir()
	cfg := DefaultConfig(home)
	cfg.SetRoot(home)

	InitializeNodeOnly(cfg)

	_, err := os.Stat(cfg.NodeKeyFile())
	require.NoError(t, err)
	_, err = os.Stat(cfg.PrivValidatorStateFile())
	require.NoError(t, err)
	_, err = os.Stat(cfg.PrivValidatorKeyFile())
	assert.True(t, os.IsNotExist(err), "node-only init keeps no validator key")
}
