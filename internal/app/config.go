package app

import (
	"errors"
	"fmt"

	"github.com/vk/gridwork/internal/pool"
)

// Config holds everything App needs to wire a pool and scheduler.
type Config struct {
	// WorkerCount is the pool's starting thread count.
	WorkerCount int
	// MaxWorkerCount bounds elastic growth via Resize; 0 means no elasticity
	// beyond WorkerCount.
	MaxWorkerCount int
	// MaxPoolBatchSize caps a single tryPop drain.
	MaxPoolBatchSize int
	// ShutdownPolicy is "drain" or "discard".
	ShutdownPolicy string

	// GraphPath, if non-empty, is an .hcl file describing elements to load
	// via internal/graphspec before Run.
	GraphPath string

	HealthcheckPort int
	LogFormat       string
	LogLevel        string
}

// NewConfig validates cfg and returns it, or an error describing the first
// invalid field. Unlike the pool's own Config.normalized (which silently
// defaults), this is the boundary the CLI's flags are checked against, so
// invalid input is reported rather than silently coerced.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkerCount <= 0 {
		return nil, errors.New("WorkerCount must be >= 1")
	}
	if cfg.MaxWorkerCount != 0 && cfg.MaxWorkerCount < cfg.WorkerCount {
		return nil, errors.New("MaxWorkerCount must be >= WorkerCount when set")
	}
	switch cfg.ShutdownPolicy {
	case "", "drain", "discard":
	default:
		return nil, fmt.Errorf("invalid ShutdownPolicy %q: must be 'drain' or 'discard'", cfg.ShutdownPolicy)
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid LogFormat %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LogLevel %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	return &cfg, nil
}

func (c *Config) poolConfig() pool.Config {
	policy := pool.Drain
	if c.ShutdownPolicy == "discard" {
		policy = pool.Discard
	}
	return pool.Config{
		ThreadCount:      c.WorkerCount,
		MaxThreadCount:   c.MaxWorkerCount,
		MaxPoolBatchSize: c.MaxPoolBatchSize,
		ShutdownPolicy:   policy,
	}
}
