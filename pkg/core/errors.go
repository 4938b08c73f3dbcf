package core

import "fmt"

// ValidationError reports a client-caused problem with a search request:
// an empty query, out-of-range pagination, or an unsupported collection
// type. The API layer maps these to 400 responses; they are never retried.
type ValidationError struct {
	// Field is the request field that failed validation (e.g. "query",
	// "per_page", "collection_type").
	Field string

	// Reason is a machine-readable explanation suitable for the caller.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProviderError wraps a data-access failure from a collection provider.
// The provider does not mask or retry these; they propagate to the
// dispatcher and surface as 500 responses.
type ProviderError struct {
	Collection CollectionType
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Collection, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
