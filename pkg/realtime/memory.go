package realtime

import (
	"context"
	"sync"
)

const subscriberBuffer = 32

// MemoryHub is an in-process Hub. Slow subscribers lose events rather than block publishers.
type MemoryHub struct {
	mu     sync.RWMutex
	topics map[string]map[*memorySubscription]struct{}
}

// NewMemoryHub constructs an empty hub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{topics: make(map[string]map[*memorySubscription]struct{})}
}

// Publish delivers the event to every current subscriber of topic.
func (h *MemoryHub) Publish(_ context.Context, topic, eventType string, payload interface{}) error {
	evt, err := newEvent(topic, eventType, payload)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.topics[topic] {
		sub.deliver(evt)
	}
	return nil
}

// Subscribe registers a new subscriber. It is removed when ctx ends or Close is called.
func (h *MemoryHub) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	sub := &memorySubscription{hub: h, topic: topic, ch: make(chan Event, subscriberBuffer), done: make(chan struct{})}
	h.mu.Lock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*memorySubscription]struct{})
	}
	h.topics[topic][sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.done:
		}
	}()
	return sub, nil
}

// Subscribers reports the number of live subscriptions on topic.
func (h *MemoryHub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *MemoryHub) remove(sub *memorySubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.topics[sub.topic]
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, sub.topic)
	}
}

type memorySubscription struct {
	hub   *MemoryHub
	topic string
	ch    chan Event
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

func (s *memorySubscription) Events() <-chan Event {
	return s.ch
}

func (s *memorySubscription) deliver(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- evt:
	default:
	}
}

func (s *memorySubscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	close(s.done)
	s.mu.Unlock()
	s.hub.remove(s)
	return nil
}
