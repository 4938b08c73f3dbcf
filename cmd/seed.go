package cmd

import (
	"context"
	"fmt"

	"github.com/biocat-io/biocat/pkg/config"
	"github.com/urfave/cli/v3"
)

// SeedCommand creates the seed command
func SeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load demo catalog data into the database",
		Action: func(ctx context.Context, c *cli.Command) error {
			return seedDatabase(ctx, c.String("config"))
		},
	}
}

func seedDatabase(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Warning: failed to close store: %v\n", err)
		}
	}()

	if err := store.Seed(ctx); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("getting stats: %w", err)
	}

	fmt.Println("Demo data loaded:")
	for _, table := range []string{"clinical_studies", "data_products", "scientific_papers", "data_domains"} {
		fmt.Printf("  %-18s %d rows\n", table, stats[table])
	}
	return nil
}
