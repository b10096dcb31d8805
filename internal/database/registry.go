package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/logger"
)

// Factory opens an adapter for one dialect.
type Factory func(ctx context.Context, cfg *Config, log *logger.Logger) (*Adapter, error)

// registry holds all registered dialect factories.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register adds a factory to the global registry under a lowercase name.
// This is typically called from a dialect package's init() function.
//
// Panics if a factory with the same name is already registered.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name = strings.ToLower(name)
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("adapter %q already registered", name))
	}
	factories[name] = f
}

// Lookup retrieves a factory by name (case-insensitive).
func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, exists := factories[strings.ToLower(name)]
	if !exists {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown adapter %q (available: %v)", name, availableLocked())
	}
	return f, nil
}

// Open resolves cfg.Adapter and opens it.
func Open(ctx context.Context, cfg *Config, log *logger.Logger) (*Adapter, error) {
	f, err := Lookup(cfg.Adapter)
	if err != nil {
		return nil, err
	}
	return f(ctx, cfg, log)
}

// Available returns a sorted list of registered adapter names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return availableLocked()
}

func availableLocked() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether an adapter with the given name exists (case-insensitive).
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, exists := factories[strings.ToLower(name)]
	return exists
}
