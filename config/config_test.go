package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWhenUnset(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.QueueCapacity)
	assert.Equal(t, 5*time.Second, cfg.SyncTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "histreamer", cfg.ServiceName)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("HISTREAMER_QUEUE_CAPACITY", "128")
	t.Setenv("HISTREAMER_SYNC_TIMEOUT", "2s")
	t.Setenv("HISTREAMER_LOG_LEVEL", "debug")
	t.Setenv("HISTREAMER_PLUGIN_DIR", "/etc/histreamer/plugins")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.QueueCapacity)
	assert.Equal(t, 2*time.Second, cfg.SyncTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/etc/histreamer/plugins", cfg.PluginDir)
}

func TestLoadRejectsInvalidQueueCapacity(t *testing.T) {
	t.Setenv("HISTREAMER_QUEUE_CAPACITY", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveQueueCapacity(t *testing.T) {
	t.Setenv("HISTREAMER_QUEUE_CAPACITY", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidSyncTimeout(t *testing.T) {
	t.Setenv("HISTREAMER_SYNC_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)
}
