package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/biocat-io/biocat/pkg/config"
	"github.com/biocat-io/biocat/pkg/core"
	"github.com/biocat-io/biocat/pkg/search"
)

// FiltersCommand creates the filters command
func FiltersCommand() *cli.Command {
	return &cli.Command{
		Name:  "filters",
		Usage: "Show the filters a collection accepts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "collection",
				Usage: "Collection type (defaults to clinical_study)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return showFilters(ctx, c.String("config"), c.String("collection"))
		},
	}
}

func showFilters(ctx context.Context, configPath, collection string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	registry := core.GetGlobalRegistry()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close store: %v\n", err)
		}
	}()

	if err := createProvidersFromConfig(registry, cfg, store); err != nil {
		return fmt.Errorf("creating providers: %w", err)
	}
	defer func() {
		if err := registry.Close(); err != nil {
			fmt.Printf("Warning: failed to close registry: %v\n", err)
		}
	}()

	searcher := search.NewService(registry, nil)
	filters, err := searcher.AvailableFilters(ctx, collection)
	if err != nil {
		return fmt.Errorf("getting filters: %w", err)
	}

	ct, _ := core.ParseCollectionType(collection)
	if len(filters) == 0 {
		fmt.Printf("Collection %s accepts no filters\n", ct)
		return nil
	}

	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Printf("Filters for %s:\n", ct)
	for _, key := range keys {
		values := filters[key]
		if len(values) == 0 {
			fmt.Printf("  %s (free-form)\n", key)
			continue
		}
		fmt.Printf("  %s: %s\n", key, strings.Join(values, ", "))
	}
	return nil
}
