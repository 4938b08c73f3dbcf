package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/biocat-io/biocat/pkg/history"
)

const (
	firehoseWriteWait  = 10 * time.Second
	firehosePingPeriod = 30 * time.Second
)

var firehoseUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST endpoints are open to any origin; the stream follows.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type firehoseInit struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type firehosePush struct {
	Type  string        `json:"type"`
	Event history.Event `json:"event"`
}

// HandleFirehoseWS streams history events to a WebSocket client as they
// are recorded. The first frame is an init message; every subsequent
// frame carries one event. Slow clients lose events rather than slowing
// down recording.
func (s *Server) HandleFirehoseWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Firehose unavailable", "History streaming is not enabled")
		return
	}

	conn, err := firehoseUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debugf("firehose upgrade failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	id, events := s.hub.Register()
	defer s.hub.Unregister(id)

	if err := conn.WriteJSON(firehoseInit{Type: "init", Timestamp: time.Now().UTC()}); err != nil {
		return
	}

	// Reader goroutine: we never expect client frames, but reading is
	// required to notice the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(firehosePingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(firehoseWriteWait))
			if err := conn.WriteJSON(firehosePush{Type: "event", Event: event}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(firehoseWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
