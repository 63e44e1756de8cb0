// Package events fans workbook events out to the realtime transports.
//
// Every published event gets the next sequence number and is kept in a
// bounded journal, so a client that reconnects can ask for what it missed.
// When the journal no longer reaches back far enough the client is told to
// resync instead.
package events

import "time"

// EventType names a workbook event.
type EventType string

// Event types.
const (
	SessionCommitted EventType = "session.committed"
	SessionChanged   EventType = "session.changed"
	WorkbookReloaded EventType = "workbook.reloaded"
	StateSaved       EventType = "state.saved"

	// ClientConnected is sent to transports directly and never journaled.
	ClientConnected EventType = "client.connected"
	// StreamGap tells a reconnecting client that events it missed are gone
	// and it must refetch the workbook.
	StreamGap EventType = "stream.gap"
)

// Event is one published event. Seq starts at 1 and increases by one per
// Publish; it is zero only for events that bypass the broker.
type Event struct {
	Seq       uint64    `json:"seq"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}
