package history

import (
	"sync"
	"time"
)

// Event is one recorded search delivered over the live history stream.
// It mirrors the persisted history entry; consumers treat the stream as
// ephemeral (no replay, no delivery guarantee).
type Event struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id"`
	Query          string              `json:"query"`
	CollectionType string              `json:"collection_type"`
	Filters        map[string][]string `json:"filters,omitempty"`
	ResultsCount   int                 `json:"results_count"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Hub is an in-memory fan-out dispatcher for history events. Each
// registered listener gets its own buffered channel; when a listener's
// buffer is full the event is dropped for that listener only, so a slow
// WebSocket consumer can never backpressure search recording.
//
// The hub is concurrency-safe.
type Hub struct {
	mu        sync.RWMutex
	listeners map[uint64]chan Event
	nextID    uint64
	bufSize   int
}

// NewHub constructs a hub with the given per-listener buffer size.
// If bufSize <= 0, a default of 32 is used.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 32
	}
	return &Hub{
		listeners: make(map[uint64]chan Event),
		bufSize:   bufSize,
	}
}

// Register adds a listener and returns its id and receive channel.
// Callers must Unregister(id) when done.
func (h *Hub) Register() (uint64, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.bufSize)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes a listener and closes its channel. Unknown ids are
// ignored; calling twice is safe.
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Broadcast delivers an event to every listener, best effort.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- event:
		default:
			// Drop for slow listener.
		}
	}
}

// Size returns the current number of active listeners.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
