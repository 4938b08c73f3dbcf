package main

import (
	"context"
	"log"
	"os"

	"github.com/biocat-io/biocat/cmd"
	"github.com/biocat-io/biocat/pkg/config"
	biocatlog "github.com/biocat-io/biocat/pkg/log"
	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "biocat",
		Usage: "Biomedical catalog search service",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: getDefaultConfigPathOrExit(),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if c.Bool("debug") {
				biocatlog.SetGlobalDebug(true)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.SeedCommand(),
			cmd.ServeCommand(),
			cmd.SearchCommand(),
			cmd.FiltersCommand(),
			cmd.StatsCommand(),
			cmd.VersionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func getDefaultConfigPathOrExit() string {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		log.Fatalf("Failed to get default config path: %v", err)
	}
	return path
}
