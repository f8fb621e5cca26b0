// Package bus is an in-process publish/subscribe hub keyed by topic.
package bus

import "sync"

// subscriberBuffer is how many events a slow subscriber may lag behind before
// events to it are dropped.
const subscriberBuffer = 64

// Event is a message published on a topic.
type Event struct {
	Topic   string
	Type    string
	Payload []byte
}

// Bus fans events out to every subscriber of their topic. Publish never blocks.
type Bus struct {
	mu     sync.Mutex
	subs   map[string]map[chan Event]struct{}
	closed bool
}

func New() *Bus {
	return &Bus{subs: make(map[string]map[chan Event]struct{})}
}

// Publish delivers an event to the current subscribers of topic. Subscribers
// whose buffer is full miss the event.
func (b *Bus) Publish(topic, eventType string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	evt := Event{Topic: topic, Type: eventType, Payload: payload}
	for ch := range b.subs[topic] {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe registers for events on topic. The returned cancel function
// unsubscribes and closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		close(ch)
		b.mu.Unlock()
		return ch, func() {}
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan Event]struct{})
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[topic][ch]; !ok {
			return
		}
		delete(b.subs[topic], ch)
		if len(b.subs[topic]) == 0 {
			delete(b.subs, topic)
		}
		close(ch)
	}
	return ch, cancel
}

// Close closes every subscription. Later publishes are ignored and later
// subscriptions receive an already closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for topic, chans := range b.subs {
		for ch := range chans {
			close(ch)
		}
		delete(b.subs, topic)
	}
}
