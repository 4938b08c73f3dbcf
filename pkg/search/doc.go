// Package search implements the biocat search dispatch pipeline: the
// single entry point that turns a caller's search request into a uniform
// result envelope, whatever collection it targets.
//
// A request flows through four stages:
//
//  1. Validation. The query must be non-empty, the page 1-based and the
//     page size within [1, 100]. Absent optional fields receive
//     defaults; out-of-range values are rejected with a
//     *core.ValidationError rather than silently clamped.
//
//  2. Provider selection. The dispatcher switches once, on the
//     collection type, to pick the provider registered for it. Nothing
//     downstream branches on the type again; adding a collection means
//     adding a provider package, not editing this one.
//
//  3. Filter normalization and query. NormalizeFilters keeps only the
//     keys the selected provider recognizes, then the provider runs a
//     single count-plus-window query against its backing store.
//
//  4. Transformation. Each raw row is converted, in order, into the
//     {id, type, title, description, metadata} envelope by the
//     provider's transformer; fields not promoted to title or
//     description are preserved in metadata.
//
// When the request carries a caller identity, the executed search is
// handed to a Recorder after the response is assembled. Recording is
// fire-and-forget: the recorder returns an id immediately, persists in
// the background, and its failures are logged away from the request
// path.
//
// Example:
//
//	svc := search.NewService(registry, recorder)
//	resp, err := svc.Search(ctx, search.Request{
//		Query:          "cancer",
//		CollectionType: "clinical_study",
//		Filters:        map[string][]string{"status": {"Recruiting"}},
//		Page:           1,
//		PerPage:        10,
//	})
package search
