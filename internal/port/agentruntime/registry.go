package agentruntime

import (
	"fmt"
	"sync"
)

// Factory is a constructor function that creates a Runtime instance from
// provider-specific settings.
type Factory func(config map[string]string) (Runtime, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a runtime factory available by provider name.
// It is typically called from the adapter package during wiring.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("agentruntime: duplicate registration for %q", name))
	}
	factories[name] = factory
}

// New creates a Runtime by provider name using the registered factory.
func New(name string, config map[string]string) (Runtime, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("agentruntime: unknown provider %q", name)
	}
	return factory(config)
}

// Available returns the names of all registered providers.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}
