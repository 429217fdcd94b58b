package database

import (
	"fmt"
	"sync"

	"github.com/rzpsarthak13/indexserve/internal/core"
	"github.com/rzpsarthak13/indexserve/internal/logging"
)

// ProviderFactory is the strategy interface for creating store providers.
// Each backend (sqlite, mysql) registers its own factory from init().
type ProviderFactory interface {
	// Kind returns the type identifier for this factory.
	Kind() string

	// Validate checks the configuration specific to this store kind.
	Validate(cfg Config) error

	// New creates a provider from the configuration.
	New(cfg Config, lg *logging.Logger) (core.Provider, error)
}

var (
	factoryRegistry = make(map[string]ProviderFactory)
	registryMutex   sync.RWMutex
)

// RegisterFactory registers a provider factory. Called from each
// implementation's init().
func RegisterFactory(factory ProviderFactory) {
	if factory == nil {
		panic("factory cannot be nil")
	}
	if factory.Kind() == "" {
		panic("factory kind cannot be empty")
	}

	registryMutex.Lock()
	defer registryMutex.Unlock()

	if _, exists := factoryRegistry[factory.Kind()]; exists {
		panic(fmt.Sprintf("factory for kind %q is already registered", factory.Kind()))
	}
	factoryRegistry[factory.Kind()] = factory
}

// NewProvider creates a store provider using the factory registered for
// cfg.Type.
func NewProvider(cfg Config, lg *logging.Logger) (core.Provider, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("store type is required")
	}

	registryMutex.RLock()
	factory, exists := factoryRegistry[cfg.Type]
	registryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
	if err := factory.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", cfg.Type, err)
	}
	return factory.New(cfg, lg)
}
