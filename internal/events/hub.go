package events

import (
	"context"
	"log"
	"sync"
)

const defaultSubscriberBuffer = 16

// Hub fans events out to in-process subscribers. Delivery is non-blocking: a
// subscriber that cannot keep up loses events rather than stalling the
// publisher.
type Hub struct {
	mu     sync.Mutex
	subs   map[int64]chan Event
	nextID int64
	buffer int
}

// NewHub constructs an in-process event hub.
func NewHub() *Hub {
	return &Hub{
		subs:   make(map[int64]chan Event),
		buffer: defaultSubscriberBuffer,
	}
}

// Subscribe registers a new subscriber. The returned cancel function removes
// the subscription and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber without blocking.
func (h *Hub) Publish(_ context.Context, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			log.Printf("events: subscriber %d is full, dropping %s event", id, event.Type)
		}
	}
}
