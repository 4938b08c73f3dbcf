package datadomain

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
)

// DomainRow is the raw result row for a data domain. Schema definition,
// validation rules and sample data are stored as JSON documents and
// surfaced as decoded structures.
type DomainRow struct {
	ID               int64
	DomainName       string
	Description      string
	Owner            string
	DataFormat       string
	SchemaDefinition any
	ValidationRules  any
	SampleData       any
	CreatedAt        string
	UpdatedAt        string
}

func (r *DomainRow) RowID() string {
	return strconv.FormatInt(r.ID, 10)
}

func (r *DomainRow) Fields() map[string]any {
	return map[string]any{
		"domain_name":       r.DomainName,
		"description":       r.Description,
		"owner":             r.Owner,
		"data_format":       r.DataFormat,
		"schema_definition": r.SchemaDefinition,
		"validation_rules":  r.ValidationRules,
		"sample_data":       r.SampleData,
		"created_at":        r.CreatedAt,
		"updated_at":        r.UpdatedAt,
	}
}

func scanDomain(rows *sql.Rows) (*DomainRow, error) {
	var d DomainRow
	var schemaDef, rules, sample string

	err := rows.Scan(&d.ID, &d.DomainName, &d.Description, &d.Owner, &d.DataFormat,
		&schemaDef, &rules, &sample, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scanning domain: %w", err)
	}

	d.SchemaDefinition = decodeJSON(schemaDef)
	d.ValidationRules = decodeJSON(rules)
	d.SampleData = decodeJSON(sample)
	return &d, nil
}

// decodeJSON falls back to the raw string when the stored document does
// not parse, so a broken value never fails a result page.
func decodeJSON(raw string) any {
	if raw == "" {
		return map[string]any{}
	}
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return raw
	}
	return out
}
