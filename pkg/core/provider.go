package core

import (
	"context"
	"database/sql"
)

// Filters is a normalized filter set: filter key to the list of accepted
// values. Values within a key are an OR-set (a row matches if its field
// equals any listed value); different keys combine as a conjunction.
type Filters map[string][]string

// Querier is the data-access capability handed to providers at
// construction. It is satisfied by *sql.DB and by storage.Store, and keeps
// providers decoupled from how the connection is opened and managed.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Row is a single raw result from a provider's backing store. Rows are
// collection-shaped: no structure is shared across providers beyond a
// stable unique identifier and access to the full native field set.
type Row interface {
	// RowID returns the stable unique identifier for this row.
	RowID() string

	// Fields returns every provider-native field of the row, keyed by
	// field name. Transformers derive the uniform result envelope from
	// this map without dropping anything.
	Fields() map[string]any
}

// Provider executes searches against one collection type's backing store.
// All providers in biocat implement this interface and register a
// prototype of themselves during init(), the same way new collection
// types are added without touching the dispatcher.
//
// Contract for Query:
//   - term is matched case-insensitively as a substring against the
//     provider's searchable text fields (at minimum a title/name and a
//     description field).
//   - filters have already been normalized: every key is one the provider
//     recognizes, values OR within a key, keys AND across the set.
//   - total is the count of rows matching term+filters before pagination;
//     the returned rows are the window [(page-1)*perPage, page*perPage)
//     under a deterministic, provider-defined sort. Identical inputs over
//     a stable dataset must yield identical pages.
//   - Data-access failures propagate as is; providers never return a
//     partial page.
type Provider interface {
	// Type returns the collection type this provider serves.
	Type() CollectionType

	// FilterKeys returns the filter keys this provider recognizes.
	// Keys outside this set are dropped during normalization. An empty
	// slice means the collection accepts no filters.
	FilterKeys() []string

	// AvailableFilters returns the recognized filter keys together with
	// the values a caller may supply for each, for discovery endpoints.
	// Enumerable keys list fixed vocabularies; open-ended keys list the
	// distinct values currently present in the store.
	AvailableFilters(ctx context.Context) (map[string][]string, error)

	// Query executes a paginated search. See the interface comment for
	// the full contract.
	Query(ctx context.Context, term string, filters Filters, page, perPage int) ([]Row, int, error)

	// Transformer returns the schema transformer that converts this
	// provider's rows into the uniform result envelope.
	Transformer() Transformer

	// Factory creates a ready-to-use provider instance bound to the
	// given data-access capability. Called by the registry when a
	// collection is enabled.
	Factory(db Querier) (Provider, error)

	// Close releases any resources held by the provider.
	Close() error
}
