// Package adapters connects the event broker to the realtime transports.
package adapters

import (
	"github.com/cofina/leads/internal/server/events"
	ws "github.com/cofina/leads/internal/server/websocket"
)

// WebSocketSubscriber forwards events to a WebSocket hub.
type WebSocketSubscriber struct {
	hub *ws.Hub
}

// NewWebSocketSubscriber creates a WebSocket subscriber.
func NewWebSocketSubscriber(hub *ws.Hub) *WebSocketSubscriber {
	return &WebSocketSubscriber{hub: hub}
}

// Send delivers an event to every WebSocket client.
func (w *WebSocketSubscriber) Send(event events.Event) error {
	w.hub.Broadcast(toMessage(event))
	return nil
}

// Close is a no-op; the hub owns its clients.
func (w *WebSocketSubscriber) Close() error { return nil }

// WebSocketReplay replays journaled events to a reconnecting client.
func WebSocketReplay(b *events.Broker) ws.ReplayFunc {
	return func(since uint64) []ws.Message {
		missed := Missed(b, since)
		out := make([]ws.Message, len(missed))
		for i, e := range missed {
			out[i] = toMessage(e)
		}
		return out
	}
}

func toMessage(e events.Event) ws.Message {
	return ws.Message{
		Seq:       e.Seq,
		Type:      string(e.Type),
		Timestamp: e.Timestamp,
		Data:      e.Data,
	}
}
