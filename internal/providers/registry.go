package providers

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ProviderFactory creates a new provider instance.
type ProviderFactory func(cfg ProviderConfig) (Provider, error)

// Registry manages provider factories and instances.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
	cache     map[string]Provider // key: "provider:client_id"
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ProviderFactory),
		cache:     make(map[string]Provider),
	}
}

// RegisterFactory registers a factory for a provider name.
// Call it at startup for each supported provider.
func (r *Registry) RegisterFactory(name string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a provider for name built from cfg. Instances are cached per
// (name, client id); call Invalidate when the config changes.
func (r *Registry) Get(name string, cfg ProviderConfig) (Provider, error) {
	key := name + ":" + cfg.ClientID

	r.mu.RLock()
	if p, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return p, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// double-check con el write lock
	if p, ok := r.cache[key]; ok {
		return p, nil
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("provider not registered: %s", name)
	}

	p, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %s: %w", name, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("provider %s: %w", name, err)
	}

	r.cache[key] = p
	return p, nil
}

// AvailableProviders returns the registered provider names, sorted.
func (r *Registry) AvailableProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invalidate drops every cached instance of provider name.
func (r *Registry) Invalidate(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.cache {
		if strings.HasPrefix(key, name+":") {
			delete(r.cache, key)
		}
	}
}
