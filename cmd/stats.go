package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/biocat-io/biocat/pkg/config"
)

// StatsCommand creates the stats command
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show catalog statistics",
		Action: func(ctx context.Context, c *cli.Command) error {
			return showStats(ctx, c.String("config"))
		},
	}
}

// showStats displays per-table row counts
func showStats(ctx context.Context, configPath string) error {
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

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("getting stats: %w", err)
	}

	formatStats(cfg.DatabasePath, stats)
	return nil
}

// formatStats formats catalog statistics for display
func formatStats(dbPath string, stats map[string]int) {
	fmt.Printf("📊 Catalog Statistics\n")
	fmt.Printf("═══════════════════════\n\n")
	fmt.Printf("Database: %s\n\n", dbPath)

	tables := make([]string, 0, len(stats))
	total := 0
	for table, count := range stats {
		tables = append(tables, table)
		total += count
	}
	sort.Strings(tables)

	for _, table := range tables {
		fmt.Printf("  %-18s %s\n", table, formatNumber(stats[table]))
	}
	fmt.Printf("\nTotal rows: %s\n", formatNumber(total))
}

// formatNumber formats a number with K/M suffixes for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}
