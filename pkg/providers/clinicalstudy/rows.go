package clinicalstudy

import (
	"database/sql"
	"fmt"
	"strconv"
)

// maxDataProducts caps how many associated data products travel with a
// study in search results.
const maxDataProducts = 2

// StudyRow is the raw, collection-shaped result row for a clinical study.
type StudyRow struct {
	ID               int64
	Title            string
	Description      string
	Status           string
	Phase            string
	Condition        string
	Drug             string
	Institution      string
	ParticipantCount int
	StartDate        string
	EndDate          string
	RelevanceScore   float64
	DataProducts     []DataProduct
}

// DataProduct is a dataset, algorithm or image collection attached to a
// study.
type DataProduct struct {
	ID          int64
	Title       string
	Description string
	Type        string
	Format      string
	Size        string
	AccessLevel string
}

func (r *StudyRow) RowID() string {
	return strconv.FormatInt(r.ID, 10)
}

func (r *StudyRow) Fields() map[string]any {
	products := make([]map[string]any, len(r.DataProducts))
	for i, dp := range r.DataProducts {
		products[i] = map[string]any{
			"id":           dp.ID,
			"title":        dp.Title,
			"description":  dp.Description,
			"type":         dp.Type,
			"format":       dp.Format,
			"size":         dp.Size,
			"access_level": dp.AccessLevel,
		}
	}

	return map[string]any{
		"title":             r.Title,
		"description":       r.Description,
		"status":            r.Status,
		"phase":             r.Phase,
		"condition":         r.Condition,
		"drug":              r.Drug,
		"institution":       r.Institution,
		"participant_count": r.ParticipantCount,
		"start_date":        r.StartDate,
		"end_date":          r.EndDate,
		"relevance_score":   r.RelevanceScore,
		"data_products":     products,
	}
}

func scanStudy(rows *sql.Rows) (*StudyRow, error) {
	var st StudyRow
	var startDate, endDate sql.NullString

	err := rows.Scan(&st.ID, &st.Title, &st.Description, &st.Status, &st.Phase,
		&st.Condition, &st.Drug, &st.Institution, &st.ParticipantCount,
		&startDate, &endDate, &st.RelevanceScore)
	if err != nil {
		return nil, fmt.Errorf("scanning study: %w", err)
	}

	st.StartDate = startDate.String
	st.EndDate = endDate.String
	return &st, nil
}
