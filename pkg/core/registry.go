package core

import (
	"fmt"
	"sync"
)

// Global registry for provider self-registration
var globalRegistry = &Registry{
	prototypes: make(map[CollectionType]Provider),
	providers:  make(map[CollectionType]Provider),
}

// Registry holds provider prototypes (registered by provider packages
// during init) and the live provider instances created from them. The
// dispatcher selects a provider once per request by collection type;
// nothing downstream branches on the type again.
type Registry struct {
	prototypes map[CollectionType]Provider
	providers  map[CollectionType]Provider
	mu         sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		prototypes: make(map[CollectionType]Provider),
		providers:  make(map[CollectionType]Provider),
	}
}

// RegisterProviderPrototype allows provider packages to register
// themselves during init().
func RegisterProviderPrototype(ct CollectionType, prototype Provider) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.prototypes[ct] = prototype
}

// GetGlobalRegistry returns a registry seeded with all prototypes that
// registered themselves at package load time.
func GetGlobalRegistry() *Registry {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	registry := NewRegistry()
	for ct, prototype := range globalRegistry.prototypes {
		registry.prototypes[ct] = prototype
	}
	return registry
}

func (r *Registry) RegisterPrototype(ct CollectionType, prototype Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.prototypes[ct]; exists {
		return fmt.Errorf("provider prototype %s already registered", ct)
	}

	r.prototypes[ct] = prototype
	return nil
}

// CreateProvider instantiates the provider for a collection type, binding
// it to the given data-access capability. An existing instance for the
// same type is closed and replaced.
func (r *Registry) CreateProvider(ct CollectionType, db Querier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prototype, exists := r.prototypes[ct]
	if !exists {
		return fmt.Errorf("provider prototype %s not found", ct)
	}

	provider, err := prototype.Factory(db)
	if err != nil {
		return fmt.Errorf("creating provider %s: %w", ct, err)
	}

	if existing, exists := r.providers[ct]; exists {
		if err := existing.Close(); err != nil {
			return fmt.Errorf("closing existing provider %s: %w", ct, err)
		}
	}

	r.providers[ct] = provider
	return nil
}

// GetProvider returns the live provider for a collection type. A type
// with no provider instance (unknown, or not enabled in configuration) is
// reported as a validation error so the API surfaces it as client-caused.
func (r *Registry) GetProvider(ct CollectionType) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[ct]
	if !exists {
		return nil, &ValidationError{
			Field:  "collection_type",
			Reason: fmt.Sprintf("no provider available for collection type %q", ct),
		}
	}

	return provider, nil
}

// GetAllProviders returns the live providers keyed by collection type.
func (r *Registry) GetAllProviders() map[CollectionType]Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[CollectionType]Provider, len(r.providers))
	for ct, p := range r.providers {
		result[ct] = p
	}
	return result
}

// ListCollections returns the collection types with live providers,
// in the canonical order.
func (r *Registry) ListCollections() []CollectionType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var types []CollectionType
	for _, ct := range AllCollectionTypes() {
		if _, ok := r.providers[ct]; ok {
			types = append(types, ct)
		}
	}
	return types
}

// RemoveProvider closes and removes the live provider for a collection
// type. Used when a collection is disabled through configuration reload.
func (r *Registry) RemoveProvider(ct CollectionType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	provider, exists := r.providers[ct]
	if !exists {
		return fmt.Errorf("provider %s not found", ct)
	}

	if err := provider.Close(); err != nil {
		return fmt.Errorf("closing provider %s: %w", ct, err)
	}

	delete(r.providers, ct)
	return nil
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for ct, provider := range r.providers {
		if err := provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing provider %s: %w", ct, err))
		}
	}

	r.providers = make(map[CollectionType]Provider)

	if len(errs) > 0 {
		return fmt.Errorf("errors closing providers: %v", errs)
	}

	return nil
}
