package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohmetrix/resource-pool/config"
)

func TestInitConfigWritesEffectiveSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respool.yaml")

	v := viper.New()
	v.Set("pool.capacity", 42)
	v.Set("logging.level", "debug")

	require.NoError(t, initConfig(v, path, false))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Pool.Capacity)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, config.Default().Database.Host, cfg.Database.Host)
}

func TestInitConfigKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respool.yaml")
	require.NoError(t, initConfig(viper.New(), path, false))

	err := initConfig(viper.New(), path, false)
	assert.ErrorContains(t, err, "already exists")

	v := viper.New()
	v.Set("pool.capacity", 7)
	require.NoError(t, initConfig(v, path, true))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pool.Capacity)
}
