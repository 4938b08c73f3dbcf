// Package scientificpaper provides the search provider for the
// scientific paper collection. Papers match on title, abstract, journal
// and keywords, and can be filtered by journal, publication date range
// and citation count range.
package scientificpaper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/biocat-io/biocat/pkg/core"
)

func init() {
	core.RegisterProviderPrototype(core.CollectionScientificPaper, &Provider{})
}

var (
	dateRanges     = []string{"last_week", "last_month", "last_year"}
	citationRanges = []string{"0-10", "11-50", "51-100", "100+"}
)

type Provider struct {
	db core.Querier

	// now is overridable so date range filters are testable against a
	// fixed clock.
	now func() time.Time
}

func New(db core.Querier) *Provider {
	return &Provider{db: db, now: time.Now}
}

func (p *Provider) Type() core.CollectionType {
	return core.CollectionScientificPaper
}

func (p *Provider) FilterKeys() []string {
	return []string{"journal", "publication_date_range", "citation_count_range"}
}

func (p *Provider) Transformer() core.Transformer {
	return core.NewFieldTransformer("title", "abstract")
}

func (p *Provider) Factory(db core.Querier) (core.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("scientific paper provider requires a data store")
	}
	return New(db), nil
}

func (p *Provider) Close() error {
	return nil
}

func (p *Provider) AvailableFilters(ctx context.Context) (map[string][]string, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT DISTINCT journal FROM scientific_papers WHERE journal != '' ORDER BY journal")
	if err != nil {
		return nil, &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("listing journals: %w", err)}
	}
	defer func() {
		_ = rows.Close()
	}()

	var journals []string
	for rows.Next() {
		var j string
		if err := rows.Scan(&j); err != nil {
			return nil, &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("scanning journal: %w", err)}
		}
		journals = append(journals, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return map[string][]string{
		"journal":                journals,
		"publication_date_range": dateRanges,
		"citation_count_range":   citationRanges,
	}, nil
}

// Query executes a paginated search over scientific papers, ordered by
// publication date (newest first) with the primary key as tiebreaker.
func (p *Provider) Query(ctx context.Context, term string, filters core.Filters, page, perPage int) ([]core.Row, int, error) {
	where, args := p.buildPredicate(term, filters)

	var total int
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scientific_papers WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("counting papers: %w", err)}
	}

	pageQuery := `
		SELECT id, title, abstract, authors, journal, doi, publication_date,
		       keywords, citation_count, reference_list
		FROM scientific_papers
		WHERE ` + where + `
		ORDER BY publication_date DESC, id ASC
		LIMIT ? OFFSET ?`
	pageArgs := append(append([]any{}, args...), perPage, (page-1)*perPage)

	rows, err := p.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("querying papers: %w", err)}
	}
	defer func() {
		_ = rows.Close()
	}()

	var results []core.Row
	for rows.Next() {
		row, err := scanPaper(rows)
		if err != nil {
			return nil, 0, &core.ProviderError{Collection: p.Type(), Err: err}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("iterating papers: %w", err)}
	}

	return results, total, nil
}

func (p *Provider) buildPredicate(term string, filters core.Filters) (string, []any) {
	lowered := strings.ToLower(term)
	conditions := []string{"(instr(lower(title), ?) > 0 OR instr(lower(abstract), ?) > 0 OR instr(lower(journal), ?) > 0 OR instr(lower(keywords), ?) > 0)"}
	args := []any{lowered, lowered, lowered, lowered}

	if journals := filters["journal"]; len(journals) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(journals)), ", ")
		conditions = append(conditions, fmt.Sprintf("journal IN (%s)", placeholders))
		for _, j := range journals {
			args = append(args, j)
		}
	}

	if ranges := filters["publication_date_range"]; len(ranges) > 0 {
		var ors []string
		for _, r := range ranges {
			cutoff, ok := p.dateCutoff(r)
			if !ok {
				// Unknown range values match nothing, in line with
				// pass-through filter values elsewhere.
				ors = append(ors, "0")
				continue
			}
			ors = append(ors, "publication_date >= ?")
			args = append(args, cutoff.Format(time.RFC3339))
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
	}

	if ranges := filters["citation_count_range"]; len(ranges) > 0 {
		var ors []string
		for _, r := range ranges {
			switch r {
			case "0-10":
				ors = append(ors, "(citation_count >= 0 AND citation_count <= 10)")
			case "11-50":
				ors = append(ors, "(citation_count >= 11 AND citation_count <= 50)")
			case "51-100":
				ors = append(ors, "(citation_count >= 51 AND citation_count <= 100)")
			case "100+":
				ors = append(ors, "citation_count > 100")
			default:
				ors = append(ors, "0")
			}
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
	}

	return strings.Join(conditions, " AND "), args
}

func (p *Provider) dateCutoff(r string) (time.Time, bool) {
	now := p.now().UTC()
	switch r {
	case "last_week":
		return now.AddDate(0, 0, -7), true
	case "last_month":
		return now.AddDate(0, 0, -30), true
	case "last_year":
		return now.AddDate(0, 0, -365), true
	}
	return time.Time{}, false
}
