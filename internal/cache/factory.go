package cache

import (
	"fmt"
	"time"

	"github.com/rzpsarthak13/indexserve/internal/core"
	"github.com/rzpsarthak13/indexserve/internal/logging"
)

// Config selects and parameterizes the result-cache backend.
type Config struct {
	// Type is "memory" (in-process LRU, the default) or "redis".
	Type string

	// Capacity bounds the in-process LRU entry count.
	Capacity int

	// Redis backend parameters.
	Endpoint  string
	Password  string
	DB        int
	KeyPrefix string

	// TTL expires Redis entries; zero means no expiry. Ignored by the
	// in-process backend, whose entries only leave via Clear or eviction.
	TTL time.Duration
}

// New creates a result cache from the configuration.
func New(cfg Config, lg *logging.Logger) (core.ResultCache, error) {
	switch cfg.Type {
	case "", "memory":
		return NewLRU(cfg.Capacity), nil
	case "redis":
		return NewRedis(cfg.Endpoint, cfg.Password, cfg.DB, cfg.KeyPrefix, cfg.TTL, lg)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}
