package api

import (
	"encoding/json"
	"net/http"

	"github.com/biocat-io/biocat/pkg/core"
	"github.com/biocat-io/biocat/pkg/history"
	"github.com/biocat-io/biocat/pkg/log"
	"github.com/biocat-io/biocat/pkg/search"
)

// userIDHeader carries the caller identity. Requests without it are
// served anonymously: searches still run but no history is recorded.
const userIDHeader = "X-User-ID"

type Server struct {
	registry *core.Registry
	searcher *search.Service
	recorder *history.Recorder
	hub      *history.Hub
	logger   *log.Logger
}

// NewServer wires the HTTP boundary over the search service. recorder
// and hub may be nil; the history and firehose endpoints then report
// the feature as unavailable.
func NewServer(registry *core.Registry, searcher *search.Service, recorder *history.Recorder, hub *history.Hub) *Server {
	return &Server{
		registry: registry,
		searcher: searcher,
		recorder: recorder,
		hub:      hub,
		logger:   log.ForService("api"),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
