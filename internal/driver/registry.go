package driver

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrInvalidURL is returned for driver URLs without a provider.
	ErrInvalidURL = errors.New("invalid driver url")
	// ErrUnknownProvider is returned when no factory is registered for a provider.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrDuplicateProvider is returned when a provider is registered twice.
	ErrDuplicateProvider = errors.New("provider already registered")
)

// Factory builds a driver for a credential id.
type Factory func(ctx context.Context, credentialID string, opts Options) (*Driver, error)

// Registry maps provider names to driver factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Provider names are case-insensitive.
func (r *Registry) Register(name string, factory Factory) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("provider name is required")
	}
	if factory == nil {
		return fmt.Errorf("factory for %s is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, name)
	}
	r.factories[name] = factory
	return nil
}

// Providers returns the registered provider names in sorted order.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// Open parses url and builds the driver of its provider.
func (r *Registry) Open(ctx context.Context, url string, opts Options) (*Driver, error) {
	provider, credentialID, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	factory, ok := r.factories[provider]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return factory(ctx, credentialID, opts)
}

// ParseURL splits a driver URL into provider and credential id. The
// credential id may be empty, in which case the configured one is used.
func ParseURL(url string) (provider, credentialID string, err error) {
	provider, credentialID, _ = strings.Cut(strings.TrimSpace(url), ":")
	provider = strings.ToLower(provider)
	if provider == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}
	return provider, credentialID, nil
}
