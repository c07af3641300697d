// Package bus is the in-process publish/subscribe channel between the
// client core and the embedding UI. Delivery is non-blocking: a slow
// subscriber loses events rather than stalling the sync loop.
package bus

import (
	"strings"
	"sync"
)

type subscriber struct {
	id     int
	prefix string
	ch     chan Event
}

// Bus fans events out to subscribers whose prefix matches the event kind.
type Bus struct {
	mu   sync.RWMutex
	subs []*subscriber
	next int
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{}
}

// Publish delivers evt to every matching subscriber without blocking.
// Events for a full subscriber channel are dropped.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if !strings.HasPrefix(evt.Kind, s.prefix) {
			continue
		}
		select {
		case s.ch <- evt:
		default:
		}
	}
}

// Subscribe registers interest in all kinds starting with prefix. An
// empty prefix matches everything. The returned cancel func removes the
// subscription; the channel is never closed.
func (b *Bus) Subscribe(prefix string, buf int) (<-chan Event, func()) {
	s := &subscriber{prefix: prefix, ch: make(chan Event, buf)}

	b.mu.Lock()
	s.id = b.next
	b.next++
	b.subs = append(b.subs, s)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, cur := range b.subs {
			if cur.id == s.id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
	return s.ch, cancel
}
