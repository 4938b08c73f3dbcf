package api

import (
	"time"

	"github.com/biocat-io/biocat/pkg/core"
	"github.com/biocat-io/biocat/pkg/history"
)

type SearchRequest struct {
	Query          string              `json:"query"`
	CollectionType string              `json:"collection_type,omitempty"`
	Filters        map[string][]string `json:"filters,omitempty"`
	Page           int                 `json:"page,omitempty"`
	PerPage        int                 `json:"per_page,omitempty"`
}

type SearchResponse struct {
	Results         []core.Result `json:"results"`
	Page            int           `json:"page"`
	PerPage         int           `json:"per_page"`
	Total           int           `json:"total"`
	SearchHistoryID string        `json:"search_history_id,omitempty"`
}

type FiltersResponse struct {
	CollectionType string              `json:"collection_type"`
	Filters        map[string][]string `json:"filters"`
}

type SuggestResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

type CollectionInfo struct {
	Type       string   `json:"type"`
	Default    bool     `json:"default"`
	FilterKeys []string `json:"filter_keys"`
}

type ListCollectionsResponse struct {
	Collections []CollectionInfo `json:"collections"`
	Count       int              `json:"count"`
}

type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
	Count   int             `json:"count"`
}

type ClearHistoryResponse struct {
	Deleted int64 `json:"deleted"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
