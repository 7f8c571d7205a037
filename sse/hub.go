package sse

import (
	"path"
	"sync"

	"github.com/kbukum/heroes/logger"
)

// Broadcaster is the part of a Hub that producers need.
type Broadcaster interface {
	// BroadcastToPattern sends data to every client whose id matches the
	// glob pattern, e.g. "search:abc:*".
	BroadcastToPattern(pattern string, data []byte)
}

type frame struct {
	pattern string
	data    []byte
}

// Hub owns the set of connected clients. Membership changes and
// broadcasts are serialized through Run.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client

	joins  chan *Client
	leaves chan *Client
	fanout chan frame
	quit   chan struct{}
	once   sync.Once
	log    *logger.Logger
}

var _ Broadcaster = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		joins:   make(chan *Client),
		leaves:  make(chan *Client),
		fanout:  make(chan frame, clientBuffer),
		quit:    make(chan struct{}),
		log:     logger.GetGlobalLogger().WithComponent("sse"),
	}
}

// Run processes joins, leaves and broadcasts until Stop. Every client
// still connected is closed on the way out.
func (h *Hub) Run() {
	defer h.closeAll()
	for {
		select {
		case <-h.quit:
			return
		case c := <-h.joins:
			h.add(c)
		case c := <-h.leaves:
			h.remove(c)
		case f := <-h.fanout:
			h.deliver(f)
		}
	}
}

// Stop ends Run. Calling it more than once is fine.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.quit) })
}

// Done is closed once Stop has been called.
func (h *Hub) Done() <-chan struct{} { return h.quit }

// Register adds client, replacing and closing any client with the same id.
// It reports false once the hub is stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.joins <- c:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes client unless it has already been replaced.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.leaves <- c:
	case <-h.quit:
	}
}

// BroadcastToPattern queues data for delivery. Broadcasts after Stop are dropped.
func (h *Hub) BroadcastToPattern(pattern string, data []byte) {
	select {
	case h.fanout <- frame{pattern: pattern, data: data}:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Lookup returns the client registered under id, or nil.
func (h *Hub) Lookup(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	if prev := h.clients[c.id]; prev != nil {
		prev.Close()
	}
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("client registered", logger.Fields("client_id", c.id, "total_clients", n))
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if h.clients[c.id] == c {
		delete(h.clients, c.id)
		c.Close()
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("client unregistered", logger.Fields("client_id", c.id, "total_clients", n))
}

func (h *Hub) deliver(f frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for id, c := range h.clients {
		ok, err := path.Match(f.pattern, id)
		if err != nil {
			h.log.Error("bad broadcast pattern", logger.MergeWithError(logger.Fields("pattern", f.pattern), err))
			return
		}
		if !ok {
			continue
		}
		if !c.Send(f.data) {
			h.log.Warn("client buffer full, dropping event", logger.Fields("client_id", id))
			continue
		}
		sent++
	}
	h.log.Debug("broadcast", logger.Fields("pattern", f.pattern, "match_count", sent, "data_size", len(f.data)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.Close()
		delete(h.clients, id)
	}
}
