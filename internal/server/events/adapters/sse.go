package adapters

import (
	"strconv"
	"time"

	"github.com/cofina/leads/internal/server/events"
	"github.com/cofina/leads/internal/server/sse"
)

// SSESubscriber forwards events to an SSE broadcaster.
type SSESubscriber struct {
	broadcaster *sse.Broadcaster
}

// NewSSESubscriber creates an SSE subscriber.
func NewSSESubscriber(broadcaster *sse.Broadcaster) *SSESubscriber {
	return &SSESubscriber{broadcaster: broadcaster}
}

// Send delivers an event to every SSE client. The SSE id is the sequence
// number, so browsers resume with it in Last-Event-ID.
func (s *SSESubscriber) Send(event events.Event) error {
	s.broadcaster.Broadcast(toFrame(event))
	return nil
}

// Close is a no-op; the broadcaster owns its clients.
func (s *SSESubscriber) Close() error { return nil }

// SSEReplay replays journaled events after a Last-Event-ID. An id that is
// not a sequence number is treated as a gap.
func SSEReplay(b *events.Broker) sse.ReplayFunc {
	return func(lastID string) []sse.Event {
		seq, err := strconv.ParseUint(lastID, 10, 64)
		if err != nil {
			return []sse.Event{toFrame(gap(b))}
		}
		missed := Missed(b, seq)
		out := make([]sse.Event, len(missed))
		for i, e := range missed {
			out[i] = toFrame(e)
		}
		return out
	}
}

// Missed returns the events after seq, or a single StreamGap event when the
// journal cannot cover them.
func Missed(b *events.Broker, seq uint64) []events.Event {
	missed, complete := b.Since(seq)
	if !complete {
		return []events.Event{gap(b)}
	}
	return missed
}

func gap(b *events.Broker) events.Event {
	return events.Event{
		Type:      events.StreamGap,
		Timestamp: time.Now().UTC(),
		Data:      map[string]any{"last_seq": b.LastSeq()},
	}
}

func toFrame(e events.Event) sse.Event {
	f := sse.Event{Event: string(e.Type), Data: e.Data}
	if e.Seq > 0 {
		f.ID = strconv.FormatUint(e.Seq, 10)
	}
	return f
}
