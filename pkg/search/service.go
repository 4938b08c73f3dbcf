package search

import (
	"context"
	"strings"

	"github.com/biocat-io/biocat/pkg/core"
)

// Pagination defaults and bounds. Out-of-range values supplied by the
// caller are rejected, not clamped; the defaults apply only to absent
// fields.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Recorder persists an executed search for an identified caller. Record
// must not block: implementations return the history entry id
// immediately and complete the write in the background. A failed write
// is the recorder's problem, never the search's.
type Recorder interface {
	Record(userID, query string, ct core.CollectionType, filters core.Filters, resultCount int) string
}

// Request carries one search request through the dispatcher. Zero values
// for CollectionType, Page and PerPage mean "absent" and receive
// defaults during validation.
type Request struct {
	// Query is the search term. Required, non-empty.
	Query string

	// CollectionType selects the collection to search. Empty selects
	// the default (clinical_study).
	CollectionType string

	// Filters maps generic filter keys to OR-sets of accepted values.
	// Unrecognized keys are dropped, not rejected.
	Filters map[string][]string

	// Page is the 1-based page number.
	Page int

	// PerPage is the page size, at most MaxPerPage.
	PerPage int

	// UserID identifies the caller when one is authenticated. When set,
	// the executed search is handed to the recorder; when empty no
	// history is written.
	UserID string
}

// Response is the assembled search result envelope. Total counts every
// matching row across all pages, independent of the requested page.
type Response struct {
	Results []core.Result
	Page    int
	PerPage int
	Total   int

	// HistoryID is the id of the recorded history entry, set only when
	// the request carried a caller identity.
	HistoryID string
}

// Service is the search dispatcher: the sole entry point of the search
// pipeline. It validates the request, selects the provider for the
// requested collection type, normalizes filters, runs the provider's
// paginated query, transforms every row into the uniform envelope and
// hands the executed search to the recorder as a fire-and-forget side
// effect.
//
// The service is stateless across requests; any number of Search calls
// may run concurrently.
type Service struct {
	registry *core.Registry
	recorder Recorder
}

// NewService creates a search service over the given provider registry.
// recorder may be nil, in which case no history is ever written.
func NewService(registry *core.Registry, recorder Recorder) *Service {
	return &Service{
		registry: registry,
		recorder: recorder,
	}
}

// Search executes one search request. Validation failures return a
// *core.ValidationError; provider failures propagate wrapped in
// *core.ProviderError. A recorder failure never surfaces here.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, &core.ValidationError{Field: "query", Reason: "query must not be empty"}
	}

	page := req.Page
	if page == 0 {
		page = DefaultPage
	}
	if page < 1 {
		return nil, &core.ValidationError{Field: "page", Reason: "page must be >= 1"}
	}

	perPage := req.PerPage
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if perPage < 1 || perPage > MaxPerPage {
		return nil, &core.ValidationError{Field: "per_page", Reason: "per_page must be between 1 and 100"}
	}

	ct, err := core.ParseCollectionType(req.CollectionType)
	if err != nil {
		return nil, err
	}

	provider, err := s.registry.GetProvider(ct)
	if err != nil {
		return nil, err
	}

	filters := NormalizeFilters(provider.FilterKeys(), req.Filters)

	rows, total, err := provider.Query(ctx, query, filters, page, perPage)
	if err != nil {
		return nil, err
	}

	transformer := provider.Transformer()
	if transformer == nil {
		transformer = core.DefaultTransformer()
	}

	results := make([]core.Result, len(rows))
	for i, row := range rows {
		results[i] = transformer.Transform(ct, row)
	}

	resp := &Response{
		Results: results,
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}

	if req.UserID != "" && s.recorder != nil {
		resp.HistoryID = s.recorder.Record(req.UserID, query, ct, filters, total)
	}

	return resp, nil
}

// AvailableFilters returns the filter vocabulary for a collection type,
// for discovery endpoints and the CLI.
func (s *Service) AvailableFilters(ctx context.Context, collectionType string) (map[string][]string, error) {
	ct, err := core.ParseCollectionType(collectionType)
	if err != nil {
		return nil, err
	}

	provider, err := s.registry.GetProvider(ct)
	if err != nil {
		return nil, err
	}

	return provider.AvailableFilters(ctx)
}

// Suggest returns up to limit result titles matching a partial query,
// for typeahead surfaces. It reuses the regular pipeline with a small
// first page.
func (s *Service) Suggest(ctx context.Context, query, collectionType string, limit int) ([]string, error) {
	if limit <= 0 || limit > MaxPerPage {
		limit = 5
	}

	resp, err := s.Search(ctx, Request{
		Query:          query,
		CollectionType: collectionType,
		Page:           1,
		PerPage:        limit,
	})
	if err != nil {
		return nil, err
	}

	suggestions := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		suggestions = append(suggestions, r.Title)
	}
	return suggestions, nil
}
