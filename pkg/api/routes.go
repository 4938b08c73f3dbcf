package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// API routes with method-specific routing
	mux.HandleFunc("POST /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/search/filters", s.HandleFilters)
	mux.HandleFunc("GET /api/search/suggest", s.HandleSuggest)
	mux.HandleFunc("GET /api/collections", s.HandleListCollections)
	mux.HandleFunc("GET /api/history", s.HandleListHistory)
	mux.HandleFunc("DELETE /api/history", s.HandleClearHistory)
	mux.HandleFunc("GET /api/firehose/ws", s.HandleFirehoseWS)
	mux.HandleFunc("GET /health", s.HandleHealth)
}
