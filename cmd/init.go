package cmd

import (
	"context"
	"fmt"

	"github.com/biocat-io/biocat/pkg/config"
	"github.com/urfave/cli/v3"
)

// InitCommand creates the init command
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize configuration and database",
		Action: func(ctx context.Context, c *cli.Command) error {
			return initConfig(c.String("config"))
		},
	}
}

// initConfig writes the sample configuration and bootstraps the database
func initConfig(configPath string) error {
	cfg, err := config.GetDefaultConfig()
	if err != nil {
		return fmt.Errorf("building default config: %w", err)
	}
	if err := cfg.SaveTemplateConfig(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
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

	fmt.Printf("Configuration initialized at %s\n", configPath)
	fmt.Printf("Database initialized at %s\n", cfg.DatabasePath)
	return nil
}
