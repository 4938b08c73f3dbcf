package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/biocat-io/biocat/pkg/core"
)

// memRow implements core.Row over a plain map.
type memRow struct {
	id     string
	fields map[string]any
}

func (r memRow) RowID() string          { return r.id }
func (r memRow) Fields() map[string]any { return r.fields }

// memProvider serves a fixed dataset from memory, paginating the same
// way the SQL providers do: filter, count, then slice the window.
type memProvider struct {
	ct         core.CollectionType
	filterKeys []string
	rows       []memRow
	queryErr   error

	lastFilters core.Filters
}

func (p *memProvider) Type() core.CollectionType { return p.ct }
func (p *memProvider) FilterKeys() []string      { return p.filterKeys }
func (p *memProvider) AvailableFilters(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string, len(p.filterKeys))
	for _, key := range p.filterKeys {
		out[key] = nil
	}
	return out, nil
}

func (p *memProvider) Query(ctx context.Context, term string, filters core.Filters, page, perPage int) ([]core.Row, int, error) {
	if p.queryErr != nil {
		return nil, 0, &core.ProviderError{Collection: p.ct, Err: p.queryErr}
	}
	p.lastFilters = filters

	var matched []memRow
	for _, row := range p.rows {
		title, _ := row.fields["title"].(string)
		if !strings.Contains(strings.ToLower(title), strings.ToLower(term)) {
			continue
		}
		if !p.matchesFilters(row, filters) {
			continue
		}
		matched = append(matched, row)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })

	total := len(matched)
	start := (page - 1) * perPage
	if start >= total {
		return []core.Row{}, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}

	out := make([]core.Row, 0, end-start)
	for _, row := range matched[start:end] {
		out = append(out, row)
	}
	return out, total, nil
}

func (p *memProvider) matchesFilters(row memRow, filters core.Filters) bool {
	for key, values := range filters {
		field, _ := row.fields[key].(string)
		ok := false
		for _, v := range values {
			if field == v {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func (p *memProvider) Transformer() core.Transformer { return nil }
func (p *memProvider) Factory(db core.Querier) (core.Provider, error) {
	return p, nil
}
func (p *memProvider) Close() error { return nil }

// captureRecorder records the last call and returns a fixed id.
type captureRecorder struct {
	calls  int
	userID string
	query  string
	total  int
}

func (r *captureRecorder) Record(userID, query string, ct core.CollectionType, filters core.Filters, resultCount int) string {
	r.calls++
	r.userID = userID
	r.query = query
	r.total = resultCount
	return "hist-123"
}

func studyRows(n int) []memRow {
	rows := make([]memRow, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, memRow{
			id: fmt.Sprintf("%03d", i),
			fields: map[string]any{
				"title":       fmt.Sprintf("Cancer Study %03d", i),
				"description": "Phase trial",
				"status":      []string{"recruiting", "completed"}[i%2],
			},
		})
	}
	return rows
}

func newTestService(provider *memProvider, recorder Recorder) *Service {
	registry := core.NewRegistry()
	if err := registry.RegisterPrototype(provider.ct, provider); err != nil {
		panic(err)
	}
	if err := registry.CreateProvider(provider.ct, nil); err != nil {
		panic(err)
	}
	return NewService(registry, recorder)
}

func TestSearchValidation(t *testing.T) {
	provider := &memProvider{ct: core.CollectionClinicalStudy, rows: studyRows(3)}
	svc := newTestService(provider, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"empty query", Request{Query: ""}, "query"},
		{"whitespace query", Request{Query: "   "}, "query"},
		{"negative page", Request{Query: "cancer", Page: -1}, "page"},
		{"zero per_page is default, negative rejected", Request{Query: "cancer", PerPage: -5}, "per_page"},
		{"per_page above maximum", Request{Query: "cancer", PerPage: 101}, "per_page"},
		{"unknown collection", Request{Query: "cancer", CollectionType: "genome"}, "collection_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(ctx, tt.req)
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestSearchDefaults(t *testing.T) {
	provider := &memProvider{ct: core.CollectionClinicalStudy, rows: studyRows(25)}
	svc := newTestService(provider, nil)

	resp, err := svc.Search(context.Background(), Request{Query: "cancer"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.Page != DefaultPage {
		t.Errorf("expected default page %d, got %d", DefaultPage, resp.Page)
	}
	if resp.PerPage != DefaultPerPage {
		t.Errorf("expected default per_page %d, got %d", DefaultPerPage, resp.PerPage)
	}
	if len(resp.Results) != DefaultPerPage {
		t.Errorf("expected %d results on first page, got %d", DefaultPerPage, len(resp.Results))
	}
	if resp.Total != 25 {
		t.Errorf("expected total 25, got %d", resp.Total)
	}
}

func TestSearchPaginationPartition(t *testing.T) {
	provider := &memProvider{ct: core.CollectionClinicalStudy, rows: studyRows(15)}
	svc := newTestService(provider, nil)
	ctx := context.Background()

	// Walking all pages at per_page=4 must yield each row exactly once
	// and Total must stay constant on every page.
	seen := make(map[string]int)
	page := 1
	for {
		resp, err := svc.Search(ctx, Request{Query: "cancer", Page: page, PerPage: 4})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if resp.Total != 15 {
			t.Errorf("page %d: expected total 15, got %d", page, resp.Total)
		}
		if len(resp.Results) == 0 {
			break
		}
		for _, r := range resp.Results {
			seen[r.ID]++
		}
		page++
	}

	if len(seen) != 15 {
		t.Fatalf("expected 15 distinct results across pages, got %d", len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("result %s appeared %d times", id, count)
		}
	}
}

func TestSearchRepeatedRequestIdentical(t *testing.T) {
	provider := &memProvider{ct: core.CollectionClinicalStudy, rows: studyRows(9)}
	svc := newTestService(provider, nil)
	ctx := context.Background()

	req := Request{Query: "cancer", Page: 2, PerPage: 3}
	first, err := svc.Search(ctx, req)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	second, err := svc.Search(ctx, req)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(first.Results) != len(second.Results) {
		t.Fatalf("result count changed between identical requests")
	}
	for i := range first.Results {
		if first.Results[i].ID != second.Results[i].ID {
			t.Errorf("position %d: %s vs %s", i, first.Results[i].ID, second.Results[i].ID)
		}
	}
}

func TestSearchPageBeyondResults(t *testing.T) {
	provider := &memProvider{ct: core.CollectionClinicalStudy, rows: studyRows(5)}
	svc := newTestService(provider, nil)

	resp, err := svc.Search(context.Background(), Request{Query: "cancer", Page: 99, PerPage: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected empty page, got %d results", len(resp.Results))
	}
	if resp.Total != 5 {
		t.Errorf("expected total 5 on empty page, got %d", resp.Total)
	}
}

func TestSearchDropsUnrecognizedFilters(t *testing.T) {
	provider := &memProvider{
		ct:         core.CollectionClinicalStudy,
		filterKeys: []string{"status"},
		rows:       studyRows(6),
	}
	svc := newTestService(provider, nil)

	resp, err := svc.Search(context.Background(), Request{
		Query: "cancer",
		Filters: map[string][]string{
			"status":  {"completed"},
			"journal": {"Nature"}, // not a clinical_study key
		},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if _, ok := provider.lastFilters["journal"]; ok {
		t.Error("unrecognized filter key reached the provider")
	}
	if _, ok := provider.lastFilters["status"]; !ok {
		t.Error("recognized filter key was dropped")
	}
	for _, r := range resp.Results {
		if r.Metadata["status"] != "completed" {
			t.Errorf("filter not applied: got status %v", r.Metadata["status"])
		}
	}
}

func TestSearchRecordsHistoryForIdentifiedUser(t *testing.T) {
	provider := &memProvider{ct: core.CollectionClinicalStudy, rows: studyRows(3)}
	recorder := &captureRecorder{}
	svc := newTestService(provider, recorder)

	resp, err := svc.Search(context.Background(), Request{Query: "cancer", UserID: "user-1"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.HistoryID != "hist-123" {
		t.Errorf("expected history id on response, got %q", resp.HistoryID)
	}
	if recorder.calls != 1 || recorder.userID != "user-1" || recorder.total != 3 {
		t.Errorf("unexpected recorder call: %+v", recorder)
	}
}

func TestSearchSkipsHistoryForAnonymous(t *testing.T) {
	provider := &memProvider{ct: core.CollectionClinicalStudy, rows: studyRows(3)}
	recorder := &captureRecorder{}
	svc := newTestService(provider, recorder)

	resp, err := svc.Search(context.Background(), Request{Query: "cancer"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.HistoryID != "" {
		t.Errorf("expected no history id for anonymous search, got %q", resp.HistoryID)
	}
	if recorder.calls != 0 {
		t.Errorf("recorder called %d times for anonymous search", recorder.calls)
	}
}

func TestSearchProviderErrorPropagates(t *testing.T) {
	provider := &memProvider{ct: core.CollectionClinicalStudy, queryErr: errors.New("db closed")}
	svc := newTestService(provider, nil)

	_, err := svc.Search(context.Background(), Request{Query: "cancer"})
	var perr *core.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
}

func TestSuggestReturnsTitles(t *testing.T) {
	provider := &memProvider{ct: core.CollectionClinicalStudy, rows: studyRows(8)}
	svc := newTestService(provider, nil)

	suggestions, err := svc.Suggest(context.Background(), "cancer", "", 3)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(suggestions))
	}
	for _, s := range suggestions {
		if !strings.Contains(s, "Cancer Study") {
			t.Errorf("unexpected suggestion %q", s)
		}
	}
}

func TestSuggestLimitFallback(t *testing.T) {
	provider := &memProvider{ct: core.CollectionClinicalStudy, rows: studyRows(20)}
	svc := newTestService(provider, nil)

	suggestions, err := svc.Suggest(context.Background(), "cancer", "", 0)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(suggestions) != 5 {
		t.Errorf("expected fallback limit of 5, got %d", len(suggestions))
	}
}

func TestNormalizeFilters(t *testing.T) {
	recognized := []string{"status", "phase"}

	tests := []struct {
		name string
		raw  map[string][]string
		want int
	}{
		{"nil map", nil, 0},
		{"all unrecognized", map[string][]string{"journal": {"Nature"}}, 0},
		{"empty value slice dropped", map[string][]string{"status": {}}, 0},
		{"recognized kept", map[string][]string{"status": {"recruiting"}, "phase": {"1", "2"}}, 2},
		{"mixed", map[string][]string{"status": {"recruiting"}, "bogus": {"x"}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeFilters(recognized, tt.raw)
			if len(got) != tt.want {
				t.Errorf("expected %d keys, got %d (%v)", tt.want, len(got), got)
			}
		})
	}
}

func TestNormalizeFiltersCopiesValues(t *testing.T) {
	raw := map[string][]string{"status": {"recruiting"}}
	got := NormalizeFilters([]string{"status"}, raw)

	raw["status"][0] = "mutated"
	if got["status"][0] != "recruiting" {
		t.Error("normalized filters share backing array with caller input")
	}
}

func ExampleNewService() {
	// Create a search service over the provider registry
	// In real usage, providers are registered before the first search
	registry := core.NewRegistry()
	service := NewService(registry, nil)

	// Service is ready to dispatch searches
	_ = service
	// Output:
}

func ExampleNormalizeFilters() {
	// Drop filter keys the clinical study provider does not recognize
	recognized := []string{"status", "phase", "condition"}
	raw := map[string][]string{
		"status":  {"Recruiting", "Completed"},
		"journal": {"Nature"},
	}

	filters := NormalizeFilters(recognized, raw)

	fmt.Println("Keys kept:", len(filters))
	fmt.Println("Status values:", len(filters["status"]))
	_, hasJournal := filters["journal"]
	fmt.Println("Journal kept:", hasJournal)

	// Output:
	// Keys kept: 1
	// Status values: 2
	// Journal kept: false
}
