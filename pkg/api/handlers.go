package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/biocat-io/biocat/pkg/core"
	"github.com/biocat-io/biocat/pkg/search"
	"github.com/biocat-io/biocat/pkg/version"
)

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	result, err := s.searcher.Search(r.Context(), search.Request{
		Query:          req.Query,
		CollectionType: req.CollectionType,
		Filters:        req.Filters,
		Page:           req.Page,
		PerPage:        req.PerPage,
		UserID:         r.Header.Get(userIDHeader),
	})
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, http.StatusBadRequest, "Invalid search request", verr.Error())
			return
		}
		s.logger.Errorf("search failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "Search failed", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, SearchResponse{
		Results:         result.Results,
		Page:            result.Page,
		PerPage:         result.PerPage,
		Total:           result.Total,
		SearchHistoryID: result.HistoryID,
	})
}

func (s *Server) HandleFilters(w http.ResponseWriter, r *http.Request) {
	collectionType := r.URL.Query().Get("collection_type")

	filters, err := s.searcher.AvailableFilters(r.Context(), collectionType)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, http.StatusBadRequest, "Invalid collection type", verr.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to load filters", err.Error())
		return
	}

	ct, _ := core.ParseCollectionType(collectionType)
	s.writeJSON(w, http.StatusOK, FiltersResponse{
		CollectionType: ct.String(),
		Filters:        filters,
	})
}

func (s *Server) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer")
			return
		}
		limit = n
	}

	suggestions, err := s.searcher.Suggest(r.Context(), query, q.Get("collection_type"), limit)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, http.StatusBadRequest, "Invalid suggest request", verr.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Suggest failed", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, SuggestResponse{
		Query:       query,
		Suggestions: suggestions,
	})
}

func (s *Server) HandleListCollections(w http.ResponseWriter, r *http.Request) {
	providers := s.registry.GetAllProviders()

	infos := make([]CollectionInfo, 0, len(providers))
	for _, ct := range s.registry.ListCollections() {
		provider, ok := providers[ct]
		if !ok {
			continue
		}
		keys := provider.FilterKeys()
		if keys == nil {
			keys = []string{}
		}
		infos = append(infos, CollectionInfo{
			Type:       ct.String(),
			Default:    ct == core.DefaultCollectionType,
			FilterKeys: keys,
		})
	}

	s.writeJSON(w, http.StatusOK, ListCollectionsResponse{
		Collections: infos,
		Count:       len(infos),
	})
}

func (s *Server) HandleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.recorder == nil {
		s.writeError(w, http.StatusServiceUnavailable, "History unavailable", "History recording is not enabled")
		return
	}

	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		s.writeError(w, http.StatusUnauthorized, "Missing identity", "X-User-ID header is required")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.recorder.List(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to load history", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, HistoryResponse{
		Entries: entries,
		Count:   len(entries),
	})
}

func (s *Server) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.recorder == nil {
		s.writeError(w, http.StatusServiceUnavailable, "History unavailable", "History recording is not enabled")
		return
	}

	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		s.writeError(w, http.StatusUnauthorized, "Missing identity", "X-User-ID header is required")
		return
	}

	deleted, err := s.recorder.Clear(r.Context(), userID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to clear history", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, ClearHistoryResponse{Deleted: deleted})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}
