package realtime

import (
	"context"
	"sync"
)

// DefaultBuffer is the per-subscriber queue length used when none is given.
const DefaultBuffer = 16

type subscriber struct {
	ch chan []byte
}

// Hub is an in-process change feed. Publish never blocks: a subscriber whose queue
// is full loses its oldest queued message, so the latest write always arrives.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*subscriber]struct{}
	buffer int
}

// NewHub returns an empty hub. buffer <= 0 selects DefaultBuffer.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{topics: make(map[string]map[*subscriber]struct{}), buffer: buffer}
}

// Publish delivers payload to every current subscriber of topic.
func (h *Hub) Publish(_ context.Context, topic string, payload []byte) error {
	h.deliver(topic, payload)
	return nil
}

func (h *Hub) deliver(topic string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.topics[topic] {
		s.offer(payload)
	}
}

func (s *subscriber) offer(payload []byte) {
	for {
		select {
		case s.ch <- payload:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// Subscribe registers a subscriber on topic. The returned cancel func closes the channel
// and is safe to call more than once.
func (h *Hub) Subscribe(topic string) (<-chan []byte, func()) {
	s := &subscriber{ch: make(chan []byte, h.buffer)}

	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*subscriber]struct{})
		h.topics[topic] = subs
	}
	subs[s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.topics[topic], s)
			if len(h.topics[topic]) == 0 {
				delete(h.topics, topic)
			}
			h.mu.Unlock()
			close(s.ch)
		})
	}
	return s.ch, cancel
}

// Subscribers reports how many subscribers topic has.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
