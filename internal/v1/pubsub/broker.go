// Package pubsub is the in-process topic broker behind room fan-out. Frames
// are opaque byte slices; the broker neither parses nor copies them. Delivery
// runs on the publisher's goroutine under the broker lock, so frames published
// to one topic reach every subscriber in publication order. Handlers must not
// block; connection handlers enqueue onto buffered per-connection channels.
package pubsub

import (
	"sync"
)

// Handler receives every frame published to a subscribed topic.
type Handler func(frame []byte)

// Subscription is a handle for one registered handler.
type Subscription struct {
	broker *Broker
	topic  string
	id     uint64
}

// Unsubscribe removes the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.broker.unsubscribe(s.topic, s.id)
}

// Topic returns the topic this subscription is attached to.
func (s *Subscription) Topic() string {
	return s.topic
}

// Broker is safe for concurrent use.
type Broker struct {
	mu          sync.Mutex
	subscribers map[string]map[uint64]Handler
	nextID      uint64
	closed      bool
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string]map[uint64]Handler),
	}
}

// Publish delivers frame to every handler subscribed to topic. Publishing to
// a topic without subscribers, or after Close, is a no-op.
func (b *Broker) Publish(topic string, frame []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, h := range b.subscribers[topic] {
		h(frame)
	}
}

// Subscribe registers a handler for topic. Returns nil after Close.
func (b *Broker) Subscribe(topic string, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.nextID++
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[uint64]Handler)
	}
	b.subscribers[topic][b.nextID] = handler

	return &Subscription{broker: b, topic: topic, id: b.nextID}
}

func (b *Broker) unsubscribe(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.subscribers[topic]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(b.subscribers, topic)
		}
	}
}

// Close drops every subscription and rejects further publishes.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.subscribers = make(map[string]map[uint64]Handler)
}

// SubscriberCount returns the number of handlers attached to topic.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[topic])
}
