package remote

import (
	"fmt"
	"sync"
)

// Constructor creates an adapter instance for a given configuration.
// Implementations register themselves with the registry using Register().
type Constructor func(cfg *Config) (Adapter, error)

var (
	registry      = make(map[Type]Constructor)
	registryMutex sync.RWMutex
)

// Register registers a transport strategy constructor. This is called
// from init() functions in the implementation packages.
//
// Example:
//
//	func init() {
//	    remote.Register(remote.TypeCloud, New)
//	}
func Register(t Type, constructor Constructor) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if constructor == nil {
		panic(fmt.Sprintf("remote: Register constructor is nil for type %s", t))
	}
	if _, exists := registry[t]; exists {
		panic(fmt.Sprintf("remote: Register called twice for type %s", t))
	}
	registry[t] = constructor
}

// RegisteredTypes returns all registered strategy types.
func RegisteredTypes() []Type {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	return types
}

// New creates the adapter selected by the configuration. The strategy's
// implementation package must be imported (usually blank-imported by the
// binary) so its constructor is registered.
func New(cfg *Config) (Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registryMutex.RLock()
	constructor := registry[cfg.Type]
	registryMutex.RUnlock()

	if constructor == nil {
		return nil, fmt.Errorf("no registered constructor for remote strategy %s (available: %v)",
			cfg.Type, RegisteredTypes())
	}

	adapter, err := constructor(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s adapter: %w", cfg.Type, err)
	}
	return adapter, nil
}
