// Package handlers provides the HTTP handlers of the leads API.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cofina/leads"
	"github.com/cofina/leads/internal/server/cache"
	"github.com/cofina/leads/internal/server/events"
	"github.com/cofina/leads/internal/server/sse"
	ws "github.com/cofina/leads/internal/server/websocket"
	"github.com/cofina/leads/pkg/errors"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	leads          leads.Leads
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	startTime      time.Time
}

// New creates a Handlers instance.
func New(
	l leads.Leads,
	cache *cache.Cache,
	broker *events.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader websocket.Upgrader,
	logger *zerolog.Logger,
) *Handlers {
	return &Handlers{
		leads:          l,
		cache:          cache,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		logger:         logger,
		startTime:      time.Now(),
	}
}

// changed invalidates cached views and tells clients the session moved.
func (h *Handlers) changed(action string, data map[string]any) {
	h.cache.Clear()
	if data == nil {
		data = map[string]any{}
	}
	data["action"] = action
	h.broker.Publish(events.SessionChanged, data)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return errors.NewParseError("json", "", "invalid request body", err)
	}
	return nil
}
