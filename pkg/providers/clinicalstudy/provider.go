// Package clinicalstudy provides the search provider for the clinical
// study collection. Studies are matched on title, description and drug,
// filtered by status, phase and condition, and returned with up to two
// attached data products each.
package clinicalstudy

import (
	"context"
	"fmt"
	"strings"

	"github.com/biocat-io/biocat/pkg/core"
)

func init() {
	core.RegisterProviderPrototype(core.CollectionClinicalStudy, &Provider{})
}

// statuses and phases are the fixed vocabularies exposed through the
// filter discovery endpoint. Filter values are not validated against
// them; an unknown status simply matches zero rows.
var (
	statuses = []string{"Recruiting", "Active", "Completed", "Not yet recruiting"}
	phases   = []string{"Phase I", "Phase II", "Phase III", "Phase IV"}
)

type Provider struct {
	db core.Querier
}

func New(db core.Querier) *Provider {
	return &Provider{db: db}
}

func (p *Provider) Type() core.CollectionType {
	return core.CollectionClinicalStudy
}

func (p *Provider) FilterKeys() []string {
	return []string{"status", "phase", "condition"}
}

func (p *Provider) Transformer() core.Transformer {
	return core.NewFieldTransformer("title", "description")
}

func (p *Provider) Factory(db core.Querier) (core.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("clinical study provider requires a data store")
	}
	return New(db), nil
}

func (p *Provider) Close() error {
	return nil
}

func (p *Provider) AvailableFilters(ctx context.Context) (map[string][]string, error) {
	conditions, err := p.distinctValues(ctx, "condition")
	if err != nil {
		return nil, err
	}

	return map[string][]string{
		"status":    statuses,
		"phase":     phases,
		"condition": conditions,
	}, nil
}

func (p *Provider) distinctValues(ctx context.Context, column string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx,
		fmt.Sprintf("SELECT DISTINCT %s FROM clinical_studies WHERE %s != '' ORDER BY %s", column, column, column))
	if err != nil {
		return nil, &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("listing %s values: %w", column, err)}
	}
	defer func() {
		_ = rows.Close()
	}()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("scanning %s value: %w", column, err)}
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Query executes a paginated search over clinical studies. The total is
// computed with the same predicate before the page window is fetched, and
// the sort (relevance score, then id) is deterministic so pages never
// overlap or skip rows for a stable dataset.
func (p *Provider) Query(ctx context.Context, term string, filters core.Filters, page, perPage int) ([]core.Row, int, error) {
	where, args := buildPredicate(term, filters)

	var total int
	countQuery := "SELECT COUNT(*) FROM clinical_studies WHERE " + where
	if err := p.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("counting studies: %w", err)}
	}

	pageQuery := `
		SELECT id, title, description, status, phase, condition, drug, institution,
		       participant_count, start_date, end_date, relevance_score
		FROM clinical_studies
		WHERE ` + where + `
		ORDER BY relevance_score DESC, id ASC
		LIMIT ? OFFSET ?`
	pageArgs := append(append([]any{}, args...), perPage, (page-1)*perPage)

	rows, err := p.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("querying studies: %w", err)}
	}
	defer func() {
		_ = rows.Close()
	}()

	var studies []*StudyRow
	for rows.Next() {
		row, err := scanStudy(rows)
		if err != nil {
			return nil, 0, &core.ProviderError{Collection: p.Type(), Err: err}
		}
		studies = append(studies, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("iterating studies: %w", err)}
	}

	if err := p.attachDataProducts(ctx, studies); err != nil {
		return nil, 0, err
	}

	results := make([]core.Row, len(studies))
	for i, st := range studies {
		results[i] = st
	}
	return results, total, nil
}

// buildPredicate assembles the WHERE clause: a case-insensitive substring
// match over the searchable text columns, AND'ed with one IN clause per
// normalized filter key.
func buildPredicate(term string, filters core.Filters) (string, []any) {
	lowered := strings.ToLower(term)
	conditions := []string{"(instr(lower(title), ?) > 0 OR instr(lower(description), ?) > 0 OR instr(lower(drug), ?) > 0)"}
	args := []any{lowered, lowered, lowered}

	for _, key := range []string{"status", "phase", "condition"} {
		values := filters[key]
		if len(values) == 0 {
			continue
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
		conditions = append(conditions, fmt.Sprintf("%s IN (%s)", key, placeholders))
		for _, v := range values {
			args = append(args, v)
		}
	}

	return strings.Join(conditions, " AND "), args
}

// attachDataProducts loads the data products for the current page of
// studies in one query and attaches up to two per study.
func (p *Provider) attachDataProducts(ctx context.Context, studies []*StudyRow) error {
	if len(studies) == 0 {
		return nil
	}

	byID := make(map[int64]*StudyRow, len(studies))
	placeholders := make([]string, 0, len(studies))
	args := make([]any, 0, len(studies))
	for _, st := range studies {
		byID[st.ID] = st
		placeholders = append(placeholders, "?")
		args = append(args, st.ID)
	}

	query := `
		SELECT study_id, id, title, description, type, format, size, access_level
		FROM data_products
		WHERE study_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY study_id, id`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("querying data products: %w", err)}
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var studyID, productID int64
		var title, description, ptype, format, size, accessLevel string
		if err := rows.Scan(&studyID, &productID, &title, &description, &ptype, &format, &size, &accessLevel); err != nil {
			return &core.ProviderError{Collection: p.Type(), Err: fmt.Errorf("scanning data product: %w", err)}
		}

		st := byID[studyID]
		if st == nil || len(st.DataProducts) >= maxDataProducts {
			continue
		}
		st.DataProducts = append(st.DataProducts, DataProduct{
			ID:          productID,
			Title:       title,
			Description: description,
			Type:        ptype,
			Format:      format,
			Size:        size,
			AccessLevel: accessLevel,
		})
	}
	return rows.Err()
}
