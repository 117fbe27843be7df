// Package log provides the process-wide structured logger (spec.md §10.1),
// grounded on xg2g's internal/log/logger.go Configure/WithComponent shape
// but trimmed to what histreamer actually needs: no audit buffer, no OTel
// trace correlation, since this is an embeddable engine, not a daemon.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the global logger.
type Config struct {
	Level   string    // "debug", "info", "warn", "error"; defaults to "info"
	Output  io.Writer // defaults to os.Stdout
	Service string    // defaults to "histreamer"
}

var (
	mu          sync.RWMutex
	base        zerolog.Logger
	initialized bool
)

// Configure initializes the global base logger. Safe to call more than
// once; later calls replace the base logger used by subsequent
// WithComponent calls.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = os.Stdout
	}

	service := cfg.Service
	if service == "" {
		service = "histreamer"
	}

	base = zerolog.New(writer).With().Timestamp().Str("service", service).Logger()
	initialized = true
}

func ensureInitialized() {
	mu.RLock()
	ok := initialized
	mu.RUnlock()
	if !ok {
		Configure(Config{})
	}
}

// WithComponent returns a child logger tagged component=name, for a
// long-lived collaborator (Pipeline, StateMachine, a Filter, the
// PluginRegistry) to hold for its lifetime.
func WithComponent(name string) zerolog.Logger {
	ensureInitialized()
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", name).Logger()
}
