package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kbukum/heroes/logger"
)

// Named events. Broadcast payloads go out as unnamed data frames, which
// browsers deliver as "message".
const (
	EventTypeConnected = "connected"
	EventTypeKeepAlive = "keepalive"
	EventTypeMessage   = "message"
	EventTypeError     = "error"
)

// KeepAliveInterval is how often an idle stream gets a comment frame.
const KeepAliveInterval = 30 * time.Second

// ConnectedEvent is the first frame of every stream.
type ConnectedEvent struct {
	ClientID  string            `json:"client_id"`
	SessionID string            `json:"session_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func writeFrame(w io.Writer, event string, data []byte) {
	if event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

// ServeSSE registers a client under clientID and streams its frames until
// the request ends or the hub stops.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, opts ...ClientOption) {
	log := logger.WithContext(r.Context()).WithComponent("sse")

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported", logger.Fields("client_id", clientID))
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	// Streams outlive the server's write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not clear write deadline", logger.MergeWithError(logger.Fields("client_id", clientID), err))
	}

	client := NewClient(clientID, opts...)
	if !hub.Register(client) {
		http.Error(w, "event hub stopped", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	hello, _ := json.Marshal(ConnectedEvent{
		ClientID:  clientID,
		SessionID: client.SessionID(),
		Metadata:  client.Metadata(),
	})
	writeFrame(w, EventTypeConnected, hello)
	flusher.Flush()
	log.Debug("client connected", logger.Fields("client_id", clientID, "remote_addr", r.RemoteAddr))

	tick := time.NewTicker(KeepAliveInterval)
	defer tick.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug("client disconnected", logger.Fields("client_id", clientID))
			return
		case data, open := <-client.Events():
			if !open {
				return
			}
			writeFrame(w, "", data)
		case now := <-tick.C:
			_, _ = fmt.Fprintf(w, ": %s %d\n\n", EventTypeKeepAlive, now.Unix())
		}
		flusher.Flush()
	}
}
