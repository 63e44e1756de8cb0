package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cofina/leads/internal/server/events"
	"github.com/cofina/leads/internal/server/response"
	ws "github.com/cofina/leads/internal/server/websocket"
	"github.com/cofina/leads/pkg/errors"
)

// EventsView is the body of GET /events.
type EventsView struct {
	Events  []events.Event `json:"events"`
	LastSeq uint64         `json:"last_seq"`
	// Resync is true when events after since are gone and the client must
	// refetch the workbook.
	Resync bool `json:"resync"`
}

// HandleEvents handles GET /api/v1/events?since=N, the polling form of the
// realtime stream.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	since, err := parseSince(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	missed, complete := h.broker.Since(since)
	if missed == nil {
		missed = []events.Event{}
	}
	response.OK(w, EventsView{Events: missed, LastSeq: h.broker.LastSeq(), Resync: !complete})
}

// HandleWebSocket handles GET /api/v1/updates/ws[?since=N].
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	since, err := parseSince(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient("", h.wsHub, conn)
	if !h.wsHub.Join(client, since) {
		_ = conn.Close()
		return
	}
	h.wsHub.Broadcast(ws.Message{
		Type:      string(events.ClientConnected),
		Timestamp: time.Now().UTC(),
		Data:      map[string]any{"client_id": client.ID(), "last_seq": h.broker.LastSeq()},
	})

	go client.WritePump()
	go client.ReadPump()
}

// HandleSSE handles GET /api/v1/updates/stream.
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.ServeHTTP(w, r)
}

func parseSince(r *http.Request) (uint64, error) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.NewValidationError("since", raw, "must be a non-negative event sequence number")
	}
	return n, nil
}
