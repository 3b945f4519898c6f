package correlation

import (
	"sync"
	"time"

	"github.com/snarg/mqtt-inspect/internal/idgen"
)

// StatusChangedEvent reports a single request-id's status transition.
// Events for a given request-id are totally ordered; no order is promised
// across unrelated request-ids.
type StatusChangedEvent struct {
	RequestID idgen.ID
	From      Status
	To        Status
	At        time.Time
}

// EventBus is a small pub-sub distributor for StatusChangedEvent: plain
// fan-out, no replay — an in-process subscriber that cares about history
// re-reads tracker state instead of replaying events.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan StatusChangedEvent
	nextID      uint64
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[uint64]chan StatusChangedEvent)}
}

// Subscribe registers a new listener and returns its channel and a cancel
// function that unregisters it. The channel is buffered; a slow subscriber
// has events dropped rather than blocking the publisher.
func (b *EventBus) Subscribe() (<-chan StatusChangedEvent, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan StatusChangedEvent, 64)
	b.subscribers[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish fans an event out to every current subscriber.
func (b *EventBus) Publish(e StatusChangedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			// Drop if the subscriber isn't keeping up.
		}
	}
}
