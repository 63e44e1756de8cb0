package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSubscriber struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (m *mockSubscriber) Send(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSubscriber) received() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func (m *mockSubscriber) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func newBroker(opts ...Option) *Broker {
	logger := zerolog.Nop()
	return NewBroker(&logger, opts...)
}

func TestBroker_PublishNumbersEvents(t *testing.T) {
	b := newBroker()
	first := b.Publish(SessionChanged, nil)
	second := b.Publish(SessionCommitted, map[string]int{"cells": 2})

	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
	assert.False(t, second.Timestamp.IsZero())
	assert.Equal(t, uint64(2), b.LastSeq())
}

func TestBroker_FanOutInOrder(t *testing.T) {
	b := newBroker()
	a, c := &mockSubscriber{}, &mockSubscriber{}
	b.Subscribe(a)
	b.Subscribe(c)
	assert.Equal(t, 2, b.Stats().Subscribers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	b.Publish(SessionCommitted, map[string]int{"cells": 2})
	b.Publish(WorkbookReloaded, nil)

	require.Eventually(t, func() bool {
		return len(a.received()) == 2 && len(c.received()) == 2
	}, time.Second, 5*time.Millisecond)

	got := a.received()
	assert.Equal(t, SessionCommitted, got[0].Type)
	assert.Equal(t, WorkbookReloaded, got[1].Type)
	assert.Less(t, got[0].Seq, got[1].Seq)
	assert.Equal(t, int64(2), b.Stats().Published)
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := newBroker()
	sub := &mockSubscriber{}
	b.Subscribe(sub)
	b.Unsubscribe(sub)

	assert.Equal(t, 0, b.Stats().Subscribers)
	assert.True(t, sub.isClosed())

	other := &mockSubscriber{}
	b.Unsubscribe(other)
	assert.False(t, other.isClosed(), "unknown subscribers are left alone")
}

func TestBroker_ShutdownClosesSubscribers(t *testing.T) {
	b := newBroker()
	sub := &mockSubscriber{}
	b.Subscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("broker did not stop")
	}
	assert.True(t, sub.isClosed())
	assert.Equal(t, 0, b.Stats().Subscribers)
}

func TestBroker_FullQueueStillJournals(t *testing.T) {
	b := newBroker(WithQueueSize(2))

	// Not running: the queue fills and live delivery is skipped.
	for range 5 {
		b.Publish(StateSaved, nil)
	}
	st := b.Stats()
	assert.Equal(t, int64(5), st.Published)
	assert.Equal(t, int64(3), st.Dropped)
	assert.Equal(t, 2, st.Queued)
	assert.Equal(t, 5, st.Journaled)

	missed, complete := b.Since(0)
	assert.True(t, complete)
	assert.Len(t, missed, 5)
}

func TestBroker_Since(t *testing.T) {
	b := newBroker(WithJournalSize(3))

	missed, complete := b.Since(0)
	assert.True(t, complete, "nothing published, nothing missed")
	assert.Empty(t, missed)

	for range 5 {
		b.Publish(SessionChanged, nil)
	}

	tests := []struct {
		name     string
		since    uint64
		seqs     []uint64
		complete bool
	}{
		{name: "up to date", since: 5, seqs: nil, complete: true},
		{name: "oldest retained boundary", since: 2, seqs: []uint64{3, 4, 5}, complete: true},
		{name: "one behind", since: 4, seqs: []uint64{5}, complete: true},
		{name: "evicted", since: 1, complete: false},
		{name: "from another process", since: 9, complete: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missed, complete := b.Since(tt.since)
			assert.Equal(t, tt.complete, complete)
			var seqs []uint64
			for _, e := range missed {
				seqs = append(seqs, e.Seq)
			}
			assert.Equal(t, tt.seqs, seqs)
		})
	}
}
