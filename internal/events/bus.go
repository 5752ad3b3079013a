// Package events fans actuator state snapshots out to SSE subscribers.
package events

import (
	"sync"

	"github.com/micro-nova/hapticd/internal/models"
)

const subBufferSize = 8

// Bus is a non-blocking publish-subscribe event bus.
// Subscribers that are slow to consume events will have events dropped rather
// than blocking the controller, which publishes while holding its lock.
type Bus struct {
	mu     sync.Mutex
	subs   map[string]chan models.State
	closed bool
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]chan models.State),
	}
}

// Subscribe creates a new subscription with the given ID.
// Call Unsubscribe with the returned channel when done. Reusing a live id
// closes the previous channel. Subscribing to a closed bus
// returns an already closed channel.
func (b *Bus) Subscribe(id string) <-chan models.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan models.State, subBufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	if old, ok := b.subs[id]; ok {
		close(old)
	}
	b.subs[id] = ch
	return ch
}

// Unsubscribe removes the subscription id and closes its channel, but only
// while id is still bound to sub. A subscription that replaced sub under the
// same id is left alone.
func (b *Bus) Unsubscribe(id string, sub <-chan models.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok && (<-chan models.State)(ch) == sub {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish sends a snapshot to all subscribers.
// If a subscriber's channel is full, the event is dropped (non-blocking).
func (b *Bus) Publish(state models.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- state:
		default:
		}
	}
}

// Close ends every subscription. Used at shutdown so SSE handlers return.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// SubscriberCount returns the current number of subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
