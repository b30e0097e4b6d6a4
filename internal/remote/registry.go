package remote

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/drivesweep/drivesweep/internal/config"
)

// Factory builds a provider client from the loaded configuration.
type Factory func(ctx context.Context, cfg *config.Config) (Client, error)

var (
	registryMu sync.Mutex
	registry   = map[string]Factory{}
)

// Register makes a provider available under name. Providers call this from
// an init function; importing a provider package is what enables it.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("remote: duplicate provider registration: " + name)
	}
	registry[name] = f
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewClient builds the configured provider and wraps it with pacing and
// metrics instrumentation.
func NewClient(ctx context.Context, cfg *config.Config) (Client, error) {
	registryMu.Lock()
	factory, ok := registry[cfg.Provider]
	registryMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (have %v)", cfg.Provider, Providers())
	}
	c, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init provider %s: %w", cfg.Provider, err)
	}
	return Instrument(c, NewPacer(cfg.CallsPerSecond)), nil
}
