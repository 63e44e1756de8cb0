// Package websocket pushes workbook events to browser clients.
package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Message is one frame pushed to clients. Seq is zero for messages that are
// not journaled.
type Message struct {
	Seq       uint64    `json:"seq,omitempty"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// ReplayFunc returns the messages after since.
type ReplayFunc func(since uint64) []Message

const clientBuffer = 256

// Hub tracks connected clients and broadcasts messages to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
	replay  ReplayFunc
	logger  *zerolog.Logger
}

// Option configures a Hub.
type Option func(*Hub)

// WithReplay sets how reconnecting clients catch up.
func WithReplay(fn ReplayFunc) Option {
	return func(h *Hub) { h.replay = fn }
}

// NewHub creates a hub.
func NewHub(logger *zerolog.Logger, opts ...Option) *Hub {
	h := &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Join registers c. When since is non-zero the messages after it are
// queued first; replay and registration happen under one lock so nothing
// published in between is lost. Join reports false once the hub is closed.
func (h *Hub) Join(c *Client, since uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}

	var missed []Message
	if since > 0 && h.replay != nil {
		missed = h.replay(since)
	}
	c.send = make(chan Message, len(missed)+clientBuffer)
	for _, m := range missed {
		c.send <- m
	}
	h.clients[c] = struct{}{}

	h.logger.Info().
		Str("client_id", c.id).
		Uint64("since", since).
		Int("replayed", len(missed)).
		Int("total_clients", len(h.clients)).
		Msg("WebSocket client connected")
	return true
}

// Leave removes c and closes its queue.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.logger.Info().
		Str("client_id", c.id).
		Int("total_clients", len(h.clients)).
		Msg("WebSocket client disconnected")
}

// Broadcast queues message for every client without blocking. A client
// whose queue is full is dropped; it can reconnect with ?since=.
func (h *Hub) Broadcast(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- message:
		default:
			delete(h.clients, c)
			close(c.send)
			h.logger.Warn().Str("client_id", c.id).Msg("WebSocket client too slow, dropped")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
	}
	clear(h.clients)
	h.closed = true
}

// Client is one WebSocket connection.
type Client struct {
	id   string
	hub  *Hub
	conn Conn
	send chan Message
	last uint64
}

// NewClient creates a client. An empty id is replaced by a random one.
func NewClient(id string, hub *Hub, conn Conn) *Client {
	if id == "" {
		id = uuid.NewString()
	}
	return &Client{id: id, hub: hub, conn: conn}
}

// ID returns the client identifier.
func (c *Client) ID() string { return c.id }

// fresh reports whether m should be written, advancing the client's
// high-water mark. Journaled messages are written once, in Seq order.
func (c *Client) fresh(m Message) bool {
	if m.Seq == 0 {
		return true
	}
	if m.Seq <= c.last {
		return false
	}
	c.last = m.Seq
	return true
}
