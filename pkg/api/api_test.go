package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/biocat-io/biocat/pkg/core"
	"github.com/biocat-io/biocat/pkg/history"
	"github.com/biocat-io/biocat/pkg/search"
	"github.com/biocat-io/biocat/pkg/storage"
)

// stubRow implements core.Row for API tests.
type stubRow struct {
	id     string
	fields map[string]any
}

func (r stubRow) RowID() string          { return r.id }
func (r stubRow) Fields() map[string]any { return r.fields }

// stubProvider serves a fixed in-memory dataset.
type stubProvider struct {
	ct   core.CollectionType
	rows []stubRow
}

func (p *stubProvider) Type() core.CollectionType { return p.ct }
func (p *stubProvider) FilterKeys() []string      { return []string{"status"} }
func (p *stubProvider) AvailableFilters(ctx context.Context) (map[string][]string, error) {
	return map[string][]string{"status": {"Recruiting", "Completed"}}, nil
}

func (p *stubProvider) Query(ctx context.Context, term string, filters core.Filters, page, perPage int) ([]core.Row, int, error) {
	var matched []stubRow
	for _, row := range p.rows {
		title, _ := row.fields["title"].(string)
		if strings.Contains(strings.ToLower(title), strings.ToLower(term)) {
			matched = append(matched, row)
		}
	}

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

func (p *stubProvider) Transformer() core.Transformer { return nil }
func (p *stubProvider) Factory(db core.Querier) (core.Provider, error) {
	return p, nil
}
func (p *stubProvider) Close() error { return nil }

func stubRows(n int) []stubRow {
	rows := make([]stubRow, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, stubRow{
			id: fmt.Sprintf("%d", i),
			fields: map[string]any{
				"title":       fmt.Sprintf("Cancer Study %d", i),
				"description": "trial",
			},
		})
	}
	return rows
}

func newTestServer(t *testing.T, withHistory bool) (*httptest.Server, *history.Recorder) {
	t.Helper()

	registry := core.NewRegistry()
	provider := &stubProvider{ct: core.CollectionClinicalStudy, rows: stubRows(12)}
	if err := registry.RegisterPrototype(provider.ct, provider); err != nil {
		t.Fatalf("registering prototype: %v", err)
	}
	if err := registry.CreateProvider(provider.ct, nil); err != nil {
		t.Fatalf("creating provider: %v", err)
	}

	var recorder *history.Recorder
	var hub *history.Hub
	if withHistory {
		store, err := storage.Open(filepath.Join(t.TempDir(), "catalog.db"))
		if err != nil {
			t.Fatalf("opening store: %v", err)
		}
		hub = history.NewHub(0)
		recorder = history.NewRecorder(store, hub)
		t.Cleanup(func() {
			_ = recorder.Close()
			_ = store.Close()
		})
	}

	searcher := search.NewService(registry, recorderOrNil(recorder))
	server := NewServer(registry, searcher, recorder, hub)

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	ts := httptest.NewServer(CorsMiddleware(mux))
	t.Cleanup(ts.Close)
	return ts, recorder
}

// recorderOrNil avoids handing the search service a typed-nil interface.
func recorderOrNil(r *history.Recorder) search.Recorder {
	if r == nil {
		return nil
	}
	return r
}

func postSearch(t *testing.T, ts *httptest.Server, body string, userID string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/search", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("posting search: %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return out
}

func TestSearchEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp := postSearch(t, ts, `{"query":"cancer","page":2,"per_page":5}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody[SearchResponse](t, resp)
	if body.Total != 12 {
		t.Errorf("expected total 12, got %d", body.Total)
	}
	if body.Page != 2 || body.PerPage != 5 {
		t.Errorf("pagination not echoed: page=%d per_page=%d", body.Page, body.PerPage)
	}
	if len(body.Results) != 5 {
		t.Errorf("expected 5 results, got %d", len(body.Results))
	}
	if body.SearchHistoryID != "" {
		t.Errorf("anonymous search should carry no history id, got %q", body.SearchHistoryID)
	}
}

func TestSearchEndpointValidation(t *testing.T) {
	ts, _ := newTestServer(t, false)

	tests := []struct {
		name string
		body string
	}{
		{"empty query", `{"query":""}`},
		{"bad collection", `{"query":"x","collection_type":"genome"}`},
		{"page zero ok but negative rejected", `{"query":"x","page":-1}`},
		{"per_page too large", `{"query":"x","per_page":500}`},
		{"malformed JSON", `{"query":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postSearch(t, ts, tt.body, "")
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestSearchEndpointRecordsHistory(t *testing.T) {
	ts, recorder := newTestServer(t, true)

	resp := postSearch(t, ts, `{"query":"cancer"}`, "user-1")
	body := decodeBody[SearchResponse](t, resp)
	if body.SearchHistoryID == "" {
		t.Fatal("expected history id for identified search")
	}

	// The write is asynchronous; poll briefly for it to land.
	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := recorder.List(context.Background(), "user-1", 10)
		if err != nil {
			t.Fatalf("listing history: %v", err)
		}
		if len(entries) == 1 {
			if entries[0].ID != body.SearchHistoryID {
				t.Errorf("history id mismatch: %s vs %s", entries[0].ID, body.SearchHistoryID)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("history entry never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFiltersEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/api/search/filters?collection_type=clinical_study")
	if err != nil {
		t.Fatalf("getting filters: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody[FiltersResponse](t, resp)
	if body.CollectionType != "clinical_study" {
		t.Errorf("expected clinical_study, got %s", body.CollectionType)
	}
	if len(body.Filters["status"]) != 2 {
		t.Errorf("expected status vocabulary, got %v", body.Filters)
	}
}

func TestFiltersEndpointUnknownCollection(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/api/search/filters?collection_type=genome")
	if err != nil {
		t.Fatalf("getting filters: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown collection, got %d", resp.StatusCode)
	}
}

func TestSuggestEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/api/search/suggest?q=cancer&limit=3")
	if err != nil {
		t.Fatalf("getting suggestions: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody[SuggestResponse](t, resp)
	if len(body.Suggestions) != 3 {
		t.Errorf("expected 3 suggestions, got %d", len(body.Suggestions))
	}
}

func TestCollectionsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/api/collections")
	if err != nil {
		t.Fatalf("getting collections: %v", err)
	}
	body := decodeBody[ListCollectionsResponse](t, resp)

	if body.Count != 1 {
		t.Fatalf("expected 1 collection, got %d", body.Count)
	}
	if body.Collections[0].Type != "clinical_study" || !body.Collections[0].Default {
		t.Errorf("unexpected collection info: %+v", body.Collections[0])
	}
}

func TestHistoryEndpointRequiresIdentity(t *testing.T) {
	ts, _ := newTestServer(t, true)

	resp, err := http.Get(ts.URL + "/api/history")
	if err != nil {
		t.Fatalf("getting history: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without X-User-ID, got %d", resp.StatusCode)
	}
}

func TestHistoryListAndClear(t *testing.T) {
	ts, recorder := newTestServer(t, true)
	ctx := context.Background()

	recorder.Record("user-1", "cancer", core.CollectionClinicalStudy, nil, 2)

	// Wait for the asynchronous write.
	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := recorder.List(ctx, "user-1", 10)
		if err != nil {
			t.Fatalf("listing: %v", err)
		}
		if len(entries) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("entry never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/history", nil)
	req.Header.Set("X-User-ID", "user-1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("getting history: %v", err)
	}
	body := decodeBody[HistoryResponse](t, resp)
	if body.Count != 1 || body.Entries[0].Query != "cancer" {
		t.Errorf("unexpected history response: %+v", body)
	}

	del, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/history", nil)
	del.Header.Set("X-User-ID", "user-1")
	delResp, err := http.DefaultClient.Do(del)
	if err != nil {
		t.Fatalf("clearing history: %v", err)
	}
	cleared := decodeBody[ClearHistoryResponse](t, delResp)
	if cleared.Deleted != 1 {
		t.Errorf("expected 1 deleted entry, got %d", cleared.Deleted)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("getting health: %v", err)
	}
	body := decodeBody[HealthResponse](t, resp)
	if body.Status != "ok" {
		t.Errorf("expected status ok, got %s", body.Status)
	}
	if body.Version == "" {
		t.Error("expected version in health response")
	}
}

func TestCorsPreflights(t *testing.T) {
	ts, _ := newTestServer(t, false)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/search", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for preflight, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected permissive CORS origin header")
	}
}
