// Package history persists executed searches for identified callers and
// fans them out to live listeners. Recording is decoupled from the
// search request path: Record returns immediately and a background
// worker completes the database write, logging failures instead of
// surfacing them.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/biocat-io/biocat/pkg/core"
	"github.com/biocat-io/biocat/pkg/log"
	"github.com/biocat-io/biocat/pkg/storage"
)

// queueSize bounds the number of pending history writes. When the queue
// is full new entries are dropped with a warning; history is best-effort
// by contract.
const queueSize = 256

// Entry is one persisted search history record.
type Entry struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id"`
	Query          string              `json:"query"`
	CollectionType string              `json:"collection_type"`
	Filters        map[string][]string `json:"filters"`
	ResultsCount   int                 `json:"results_count"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Recorder implements the search service's fire-and-forget history
// contract. IDs are assigned up front so callers can reference the
// entry without waiting for the write.
type Recorder struct {
	store  *storage.Store
	hub    *Hub
	logger *log.Logger

	queue chan Entry
	done  chan struct{}
	once  sync.Once
}

// NewRecorder creates a recorder writing to the given store and starts
// its background worker. hub may be nil when no live stream is wanted.
func NewRecorder(store *storage.Store, hub *Hub) *Recorder {
	r := &Recorder{
		store:  store,
		hub:    hub,
		logger: log.ForService("history"),
		queue:  make(chan Entry, queueSize),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// Record queues a history entry and returns its id without waiting for
// the write. When the queue is full the entry is dropped and logged;
// the returned id then refers to an entry that was never persisted,
// which the best-effort contract allows.
func (r *Recorder) Record(userID, query string, ct core.CollectionType, filters core.Filters, resultCount int) string {
	entry := Entry{
		ID:             uuid.NewString(),
		UserID:         userID,
		Query:          query,
		CollectionType: ct.String(),
		Filters:        filters,
		ResultsCount:   resultCount,
		CreatedAt:      time.Now().UTC(),
	}

	select {
	case r.queue <- entry:
	default:
		r.logger.Warnf("history queue full, dropping entry for user %s", userID)
	}

	return entry.ID
}

func (r *Recorder) run() {
	defer close(r.done)
	for entry := range r.queue {
		if err := r.persist(context.Background(), entry); err != nil {
			r.logger.Errorf("recording search for user %s: %v", entry.UserID, err)
			continue
		}
		if r.hub != nil {
			r.hub.Broadcast(Event(entry))
		}
	}
}

func (r *Recorder) persist(ctx context.Context, entry Entry) error {
	filtersJSON, err := json.Marshal(entry.Filters)
	if err != nil {
		return fmt.Errorf("marshaling filters: %w", err)
	}

	_, err = r.store.ExecContext(ctx, `
		INSERT INTO search_history (id, user_id, query, collection_type, filters, results_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Query, entry.CollectionType,
		string(filtersJSON), entry.ResultsCount, entry.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// Close stops accepting entries and waits for pending writes to drain.
func (r *Recorder) Close() error {
	r.once.Do(func() {
		close(r.queue)
	})
	<-r.done
	return nil
}

// List returns the most recent history entries for a user, newest first.
func (r *Recorder) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.store.QueryContext(ctx, `
		SELECT id, user_id, query, collection_type, filters, results_count, created_at
		FROM search_history
		WHERE user_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var filtersJSON, createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Query, &e.CollectionType, &filtersJSON, &e.ResultsCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		if err := json.Unmarshal([]byte(filtersJSON), &e.Filters); err != nil {
			e.Filters = map[string][]string{}
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes a user's entire search history and reports how many
// entries were removed.
func (r *Recorder) Clear(ctx context.Context, userID string) (int64, error) {
	res, err := r.store.ExecContext(ctx, "DELETE FROM search_history WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return res.RowsAffected()
}
