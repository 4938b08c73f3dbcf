// Package datadomain provides the search provider for the data domain
// metadata collection. Domains match on name, description and owner.
// The collection defines no filter keys: every supplied filter is
// dropped during normalization and the search degenerates to a pure
// term match.
package datadomain

import (
	"context"
	"fmt"
	"strings"

	"github.com/biocat-io/biocat/pkg/core"
)

func init() {
	core.RegisterProviderPrototype(core.CollectionDataDomain, &Provider{})
}

type Provider struct {
	db core.Querier
}

func New(db core.Querier) *Provider {
	return &Provider{db: db}
}

func (p *Provider) Type() core.CollectionType {
	return core.CollectionDataDomain
}

// FilterKeys returns the empty set: the data domain collection defines
// no recognized filters.
func (p *Provider) FilterKeys() []string {
	return nil
}

func (p *Provider) Transformer() core.Transformer {
	return core.NewFieldTransformer("domain_name", "description")
}

func (p *Provider) Factory(db core.Querier) (core.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("data domain provider requires a data store")
	}
	return New(db), nil
}

func (p *Provider) Close() error {
	return nil
}

func (p *Provider) AvailableFilters(ctx context.Context) (map[string][]string, error) {
	return map[string][]string{}, nil
}

// Query executes a paginated search over data domains, ordered by domain
// name with the primary key as tiebreaker.
func (p *Provider) Query(ctx context.Context, term string, filters core.Filters, page, perPage int) ([]core.Row, int, error) {
	lowered := strings.ToLower(term)
	where := "(instr(lower(domain_name), ?) > 0 OR instr(lower(description), ?) > 0 OR instr(lower(owner), ?) > 0)"
	args := []any{lowered, lowered, lowered}

	var total int
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM data_domains WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("counting domains: %w", err)}
	}

	pageQuery := `
		SELECT id, domain_name, description, owner, data_format,
		       schema_definition, validation_rules, sample_data, created_at, updated_at
		FROM data_domains
		WHERE ` + where + `
		ORDER BY domain_name ASC, id ASC
		LIMIT ? OFFSET ?`
	pageArgs := append(append([]any{}, args...), perPage, (page-1)*perPage)

	rows, err := p.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("querying domains: %w", err)}
	}
	defer func() {
		_ = rows.Close()
	}()

	var results []core.Row
	for rows.Next() {
		row, err := scanDomain(rows)
		if err != nil {
			return nil, 0, &core.ProviderError{Collection: p.Type(), Err: err}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("iterating domains: %w", err)}
	}

	return results, total, nil
}
