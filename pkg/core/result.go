package core

// Result is the uniform envelope every search hit is converted into,
// regardless of which collection produced it. Results are request-scoped:
// constructed by a transformer, returned to the caller, never persisted.
type Result struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

// Transformer converts one raw provider row into a Result. Transformers
// are pure: no I/O, no failure for well-formed rows. A missing title or
// description becomes an empty string rather than an error so that a
// single malformed record cannot poison a page.
type Transformer interface {
	Transform(ct CollectionType, row Row) Result
}

// fieldTransformer maps two named row fields onto the envelope's title
// and description and moves every remaining field into metadata.
type fieldTransformer struct {
	titleField       string
	descriptionField string
}

// NewFieldTransformer returns a Transformer that promotes the named row
// fields to the envelope's title and description. All other fields are
// preserved in the result metadata without loss.
func NewFieldTransformer(titleField, descriptionField string) Transformer {
	return fieldTransformer{
		titleField:       titleField,
		descriptionField: descriptionField,
	}
}

// DefaultTransformer is the fallback used when a provider does not supply
// its own mapping: "title" and "description" fields, everything else in
// metadata.
func DefaultTransformer() Transformer {
	return NewFieldTransformer("title", "description")
}

func (t fieldTransformer) Transform(ct CollectionType, row Row) Result {
	fields := row.Fields()
	metadata := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == t.titleField || k == t.descriptionField {
			continue
		}
		metadata[k] = v
	}

	return Result{
		ID:          row.RowID(),
		Type:        ct.String(),
		Title:       stringField(fields, t.titleField),
		Description: stringField(fields, t.descriptionField),
		Metadata:    metadata,
	}
}

// stringField extracts a string field, tolerating absent or non-string
// values by substituting the empty string.
func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
