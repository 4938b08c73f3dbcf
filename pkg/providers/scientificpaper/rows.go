package scientificpaper

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
)

// PaperRow is the raw result row for a scientific paper. Authors,
// keywords and references are stored as JSON arrays in the database and
// decoded on the way out.
type PaperRow struct {
	ID              int64
	Title           string
	Abstract        string
	Authors         []string
	Journal         string
	DOI             string
	PublicationDate string
	Keywords        []string
	CitationCount   int
	References      []string
}

func (r *PaperRow) RowID() string {
	return strconv.FormatInt(r.ID, 10)
}

func (r *PaperRow) Fields() map[string]any {
	return map[string]any{
		"title":            r.Title,
		"abstract":         r.Abstract,
		"authors":          r.Authors,
		"journal":          r.Journal,
		"doi":              r.DOI,
		"publication_date": r.PublicationDate,
		"keywords":         r.Keywords,
		"citation_count":   r.CitationCount,
		"references":       r.References,
	}
}

func scanPaper(rows *sql.Rows) (*PaperRow, error) {
	var p PaperRow
	var authors, keywords, references string
	var pubDate sql.NullString

	err := rows.Scan(&p.ID, &p.Title, &p.Abstract, &authors, &p.Journal,
		&p.DOI, &pubDate, &keywords, &p.CitationCount, &references)
	if err != nil {
		return nil, fmt.Errorf("scanning paper: %w", err)
	}

	p.PublicationDate = pubDate.String
	p.Authors = decodeStringList(authors)
	p.Keywords = decodeStringList(keywords)
	p.References = decodeStringList(references)
	return &p, nil
}

// decodeStringList tolerates malformed JSON by returning an empty list;
// a broken stored value should not fail a whole result page.
func decodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}
