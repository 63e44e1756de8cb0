package events

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cofina/leads/pkg/logging"
)

// Default sizes.
const (
	DefaultQueueSize   = 256
	DefaultJournalSize = 512
)

// Broker numbers, journals and fans out events.
type Broker struct {
	mu        sync.Mutex
	subs      []Subscriber
	seq       uint64
	journal   *journal
	queue     chan Event
	published int64
	dropped   int64
	logger    *zerolog.Logger
}

// Option configures a Broker.
type Option func(*Broker)

// WithQueueSize sets how many events may wait for delivery.
func WithQueueSize(n int) Option {
	return func(b *Broker) {
		if n > 0 {
			b.queue = make(chan Event, n)
		}
	}
}

// WithJournalSize sets how many recent events are kept for replay.
func WithJournalSize(n int) Option {
	return func(b *Broker) { b.journal = newJournal(n) }
}

// NewBroker creates a broker. Subscribers may be added before Run.
func NewBroker(logger *zerolog.Logger, opts ...Option) *Broker {
	if logger == nil {
		logger = logging.Default()
	}
	b := &Broker{
		journal: newJournal(DefaultJournalSize),
		queue:   make(chan Event, DefaultQueueSize),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish stamps an event with the next sequence number, journals it and
// queues it for delivery. When the queue is full delivery is skipped but
// the event stays in the journal, so clients can still replay it.
func (b *Broker) Publish(eventType EventType, data any) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	event := Event{Seq: b.seq, Type: eventType, Timestamp: time.Now().UTC(), Data: data}
	b.journal.add(event)
	b.published++

	select {
	case b.queue <- event:
	default:
		b.dropped++
		b.logger.Warn().
			Uint64("seq", event.Seq).
			Str("event_type", string(eventType)).
			Msg("Event queue full, live delivery skipped")
	}
	return event
}

// Since returns journaled events with Seq greater than seq. complete is
// false when the journal cannot account for every event after seq.
func (b *Broker) Since(seq uint64) (missed []Event, complete bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.journal.since(seq)
}

// LastSeq returns the sequence number of the newest event.
func (b *Broker) LastSeq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// Subscribe adds a subscriber.
func (b *Broker) Subscribe(sub Subscriber) {
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	n := len(b.subs)
	b.mu.Unlock()
	b.logger.Debug().Int("subscribers", n).Msg("Subscriber added")
}

// Unsubscribe removes and closes a subscriber.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	i := slices.Index(b.subs, sub)
	if i >= 0 {
		b.subs = slices.Delete(b.subs, i, i+1)
	}
	b.mu.Unlock()
	if i >= 0 {
		_ = sub.Close()
	}
}

// Run delivers queued events in Seq order until ctx is cancelled, then
// closes every subscriber.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			subs := b.subs
			b.subs = nil
			b.mu.Unlock()
			for _, sub := range subs {
				_ = sub.Close()
			}
			b.logger.Info().Msg("Event broker shut down")
			return

		case event := <-b.queue:
			b.mu.Lock()
			subs := slices.Clone(b.subs)
			b.mu.Unlock()
			for _, sub := range subs {
				if err := sub.Send(event); err != nil {
					b.logger.Warn().Err(err).
						Uint64("seq", event.Seq).
						Str("event_type", string(event.Type)).
						Msg("Subscriber rejected event")
				}
			}
		}
	}
}

// Stats is a snapshot of broker counters.
type Stats struct {
	Published   int64  `json:"published_total"`
	Dropped     int64  `json:"dropped_total"`
	Queued      int    `json:"queue_depth"`
	Subscribers int    `json:"subscribers"`
	LastSeq     uint64 `json:"last_seq"`
	Journaled   int    `json:"journaled"`
}

// Stats returns the current counters.
func (b *Broker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Published:   b.published,
		Dropped:     b.dropped,
		Queued:      len(b.queue),
		Subscribers: len(b.subs),
		LastSeq:     b.seq,
		Journaled:   b.journal.len(),
	}
}
