package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/osrecon/internal/model"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
inventory:
  path: /var/lib/osrecon/inventory.db
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, defaultConcurrency, cfg.Concurrency)
	assert.Equal(t, defaultMetricsListen, cfg.MetricsListenAddress)
	assert.Equal(t, defaultSNMPCommunity, cfg.SNMP.Community)
	assert.Equal(t, "/var/lib/osrecon/inventory.db", cfg.Inventory.Path)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
concurrency: 32
batch_timeout: 5m
dryrun: true
inventory:
  path: inventory.db
snmp:
  community: lab
  port: 1161
  timeout: 2s
  retries: 3
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 32, cfg.Concurrency)
	assert.Equal(t, 5*time.Minute, cfg.BatchTimeout)
	assert.True(t, cfg.Dryrun)
	assert.Equal(t, "lab", cfg.SNMP.Community)
	assert.Equal(t, uint16(1161), cfg.SNMP.Port)
	assert.Equal(t, 2*time.Second, cfg.SNMP.Timeout)
	assert.Equal(t, 3, cfg.SNMP.Retries)
}

func TestLoadLogLevelArgWins(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
inventory:
  path: inventory.db
`)

	cfg, err := Load(path, "trace")
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.LogLevel)
}

func TestLoadRequiresInventoryPath(t *testing.T) {
	path := writeConfig(t, `log_level: info`)

	_, err := Load(path, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfig)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfig)
}
