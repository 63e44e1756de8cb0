// Package sse streams workbook events as Server-Sent Events.
//
// A client reconnecting with Last-Event-ID (or ?since=) first receives the
// events it missed from the replay function, then the live stream. Live
// events already sent during replay are skipped.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event is one SSE frame.
type Event struct {
	Event string `json:"event,omitempty"`
	ID    string `json:"id,omitempty"`
	Data  any    `json:"data"`
}

// ReplayFunc returns the events after lastID.
type ReplayFunc func(lastID string) []Event

const (
	// DefaultHeartbeat is how often an idle stream gets a comment line.
	DefaultHeartbeat = 30 * time.Second
	retryMillis      = 3000
	clientBuffer     = 64
)

// Broadcaster manages SSE connections.
type Broadcaster struct {
	mu        sync.Mutex
	clients   map[chan Event]struct{}
	closed    bool
	replay    ReplayFunc
	heartbeat time.Duration
	logger    *zerolog.Logger
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithReplay sets how reconnecting clients catch up.
func WithReplay(fn ReplayFunc) Option {
	return func(b *Broadcaster) { b.replay = fn }
}

// WithHeartbeat sets the keepalive interval.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broadcaster) {
		if d > 0 {
			b.heartbeat = d
		}
	}
}

// NewBroadcaster creates a broadcaster.
func NewBroadcaster(logger *zerolog.Logger, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		clients:   make(map[chan Event]struct{}),
		heartbeat: DefaultHeartbeat,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Broadcast hands event to every client without blocking. A client whose
// buffer is full is disconnected; it resumes with Last-Event-ID.
func (b *Broadcaster) Broadcast(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		select {
		case ch <- event:
		default:
			delete(b.clients, ch)
			close(ch)
			b.logger.Warn().Str("event", event.Event).Msg("SSE client too slow, disconnected")
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Close disconnects every client and refuses new ones.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		close(ch)
	}
	clear(b.clients)
	b.closed = true
}

// join registers a client and computes its replay under one lock, so no
// event falls between the two.
func (b *Broadcaster) join(lastID string) (chan Event, []Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, nil, false
	}
	var missed []Event
	if lastID != "" && b.replay != nil {
		missed = b.replay(lastID)
	}
	ch := make(chan Event, clientBuffer)
	b.clients[ch] = struct{}{}
	return ch, missed, true
}

func (b *Broadcaster) leave(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[ch]; ok {
		delete(b.clients, ch)
		close(ch)
	}
}

// ServeHTTP streams events until the client goes away or the broadcaster
// closes.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	lastID := r.Header.Get("Last-Event-ID")
	if lastID == "" {
		lastID = r.URL.Query().Get("since")
	}
	ch, missed, ok := b.join(lastID)
	if !ok {
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer b.leave(ch)

	// The stream outlives the server's WriteTimeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)

	b.write(w, Event{Event: "connected", Data: map[string]any{"replayed": len(missed)}})
	sent := make(map[string]struct{}, len(missed))
	for _, e := range missed {
		b.write(w, e)
		if e.ID != "" {
			sent[e.ID] = struct{}{}
		}
	}
	flusher.Flush()
	b.logger.Debug().Str("last_event_id", lastID).Int("replayed", len(missed)).Msg("SSE client connected")

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case e, open := <-ch:
			if !open {
				return
			}
			if _, dup := sent[e.ID]; dup {
				delete(sent, e.ID)
				continue
			}
			b.write(w, e)
			flusher.Flush()
		case <-ticker.C:
			_, _ = fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func (b *Broadcaster) write(w http.ResponseWriter, e Event) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		b.logger.Error().Err(err).Str("event", e.Event).Msg("Failed to marshal SSE event data")
		return
	}
	if e.Event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", e.Event)
	}
	if e.ID != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", e.ID)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
