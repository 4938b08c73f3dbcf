package cmd

import (
	"fmt"

	"github.com/biocat-io/biocat/pkg/config"
	"github.com/biocat-io/biocat/pkg/core"
	"github.com/biocat-io/biocat/pkg/storage"
)

// openStore opens the catalog database configured in cfg.
func openStore(cfg *config.Config) (*storage.Store, error) {
	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.DatabasePath, err)
	}
	return store, nil
}

// createProvidersFromConfig instantiates a provider for every enabled
// collection, binding each to the store.
func createProvidersFromConfig(registry *core.Registry, cfg *config.Config, store *storage.Store) error {
	for _, ct := range core.AllCollectionTypes() {
		if !cfg.CollectionEnabled(ct.String()) {
			continue
		}
		if err := registry.CreateProvider(ct, store); err != nil {
			return fmt.Errorf("creating provider %s: %w", ct, err)
		}
	}
	return nil
}
