package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/biocat-io/biocat/pkg/config"
	"github.com/biocat-io/biocat/pkg/core"
	"github.com/biocat-io/biocat/pkg/search"
)

// Define styles using lipgloss
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	resultTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("214"))

	resultStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Margin(0, 0, 1, 2)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "query",
				Usage: "Search query",
			},
			&cli.StringFlag{
				Name:  "collection",
				Usage: "Collection to search (clinical_study, scientific_paper, data_domain)",
			},
			&cli.StringSliceFlag{
				Name:  "filter",
				Usage: "Filter as key=value. Repeat for multiple values",
			},
			&cli.IntFlag{
				Name:  "page",
				Usage: "Page number",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "per-page",
				Usage: "Results per page",
				Value: 10,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return searchCatalog(ctx, c.String("config"), c.String("query"), c.String("collection"), c.StringSlice("filter"), c.Int("page"), c.Int("per-page"))
		},
	}
}

func searchCatalog(ctx context.Context, configPath, query, collection string, rawFilters []string, page, perPage int) error {
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

	filters, err := parseFilterFlags(rawFilters)
	if err != nil {
		return err
	}

	searcher := search.NewService(registry, nil)
	resp, err := searcher.Search(ctx, search.Request{
		Query:          query,
		CollectionType: collection,
		Filters:        filters,
		Page:           page,
		PerPage:        perPage,
	})
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	renderResults(query, collection, resp)
	return nil
}

// parseFilterFlags turns repeated key=value flags into the filter map.
// Repeating a key builds an OR-set of its values.
func parseFilterFlags(raw []string) (map[string][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	filters := make(map[string][]string)
	for _, pair := range raw {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", pair)
		}
		filters[key] = append(filters[key], value)
	}
	return filters, nil
}

func renderResults(query, collection string, resp *search.Response) {
	caser := cases.Title(language.English)
	if collection == "" {
		collection = core.DefaultCollectionType.String()
	}
	header := fmt.Sprintf("%s results for %q", caser.String(strings.ReplaceAll(collection, "_", " ")), query)
	fmt.Println(titleStyle.Render(header))

	if len(resp.Results) == 0 {
		fmt.Println(noDataStyle.Render("No results found"))
		return
	}

	for i, result := range resp.Results {
		var b strings.Builder
		b.WriteString(resultTitleStyle.Render(fmt.Sprintf("%d. %s", (resp.Page-1)*resp.PerPage+i+1, result.Title)))
		if result.Description != "" {
			b.WriteString("\n" + truncate(result.Description, 200))
		}
		b.WriteString("\n" + metaStyle.Render(fmt.Sprintf("id=%s type=%s", result.ID, result.Type)))
		fmt.Println(resultStyle.Render(b.String()))
	}

	fmt.Println(metaStyle.Render(fmt.Sprintf("page %d, %d of %d results", resp.Page, len(resp.Results), resp.Total)))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
