// Package config loads process-wide tunables for an embedded HiStreamer
// engine from environment variables, grounded on xg2g/internal/config/env.go's
// os.Getenv+strconv+defaults idiom but trimmed to a single flat struct: an
// embeddable engine has no YAML file to merge, unlike xg2g's daemon config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Prefix is prepended to every environment variable this package reads.
const Prefix = "HISTREAMER_"

// Config holds process-wide tunables (spec.md §10.3).
type Config struct {
	// PluginDir is scanned at startup for plugin manifest YAML files
	// (plugin/registry.WatchDir); empty disables directory loading.
	PluginDir string

	// QueueCapacity bounds every task.Queue created by the engine unless
	// a component overrides it explicitly.
	QueueCapacity int

	// SyncTimeout bounds state.Machine.SendEvent's synchronous wait
	// (spec.md §4.6's "5-second timeout").
	SyncTimeout time.Duration

	// LogLevel is one of zerolog's level names ("debug", "info", "warn",
	// "error"); see internal/log.Configure.
	LogLevel string

	// ServiceName is attached to every structured log line.
	ServiceName string

	// MetricsAddr is the listen address for a Prometheus /metrics
	// endpoint serving metrics.Handler(). Load fills it in; no package in
	// this module opens a listener on it.
	MetricsAddr string
}

// defaults returns a Config populated with HiStreamer's built-in defaults,
// before any environment variable is applied.
func defaults() Config {
	return Config{
		PluginDir:     "",
		QueueCapacity: 64,
		SyncTimeout:   5 * time.Second,
		LogLevel:      "info",
		ServiceName:   "histreamer",
		MetricsAddr:   ":9090",
	}
}

// Load reads Config from HISTREAMER_-prefixed environment variables,
// falling back to built-in defaults for anything unset. A variable that is
// set but cannot be parsed is reported as an error.
func Load() (*Config, error) {
	cfg := defaults()

	cfg.PluginDir = envString("PLUGIN_DIR", cfg.PluginDir)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.ServiceName = envString("SERVICE_NAME", cfg.ServiceName)
	cfg.MetricsAddr = envString("METRICS_ADDR", cfg.MetricsAddr)

	capacity, err := envInt("QUEUE_CAPACITY", cfg.QueueCapacity)
	if err != nil {
		return nil, err
	}
	cfg.QueueCapacity = capacity

	timeout, err := envDuration("SYNC_TIMEOUT", cfg.SyncTimeout)
	if err != nil {
		return nil, err
	}
	cfg.SyncTimeout = timeout

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("config: %sQUEUE_CAPACITY must be positive, got %d", Prefix, c.QueueCapacity)
	}
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("config: %sSYNC_TIMEOUT must be positive, got %s", Prefix, c.SyncTimeout)
	}
	return nil
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(Prefix + key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(Prefix + key)
	if !ok || v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s%s: %w", Prefix, key, err)
	}
	return i, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(Prefix + key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s%s: %w", Prefix, key, err)
	}
	return d, nil
}
