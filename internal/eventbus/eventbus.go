// Package eventbus carries generation events from the engine to whoever
// wants them: metric sinks, progress displays, tests. Delivery never
// blocks the publisher; a slow subscriber loses events and the loss is
// counted.
package eventbus

import (
	"sync"
	"sync/atomic"
)

// Event is any value published on the bus. The engine publishes the types
// listed in core/events.
type Event any

// EventBus is the publish side plus subscription management.
type EventBus interface {
	Publish(Event)
	Subscribe(buffer int) <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus fans every published event out to all subscriber channels.
type Bus struct {
	mu      sync.RWMutex
	subs    []chan Event
	closed  bool
	dropped atomic.Uint64
}

// New creates an empty bus.
func New() *Bus { return &Bus{} }

// Publish delivers e to every subscriber whose buffer has room. Full or
// absent subscribers are skipped, never waited on.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe registers a subscriber with the given channel buffer, minimum
// one. Subscribing to a closed bus yields an already-closed channel.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel. Unknown
// channels are ignored.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Dropped reports how many deliveries were skipped over the bus lifetime.
func (b *Bus) Dropped() uint64 { return b.dropped.Load() }

// Close closes every subscriber channel and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
