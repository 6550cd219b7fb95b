// Package feed implements the in-memory pub/sub broker behind the live
// notification stream.
package feed

import (
	"sync"

	"github.com/tripdeskhq/tripdesk/internal/model"
)

const subscriberBuffer = 16

// Broker fans notifications out to subscribed sessions. Publishing never
// blocks: a subscriber that cannot keep up misses events rather than
// stalling the publisher.
type Broker struct {
	mu   sync.RWMutex
	subs map[int]chan model.Notification
	next int
}

// NewBroker constructs a Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan model.Notification)}
}

// Subscribe registers a listener and returns its channel plus a cancel
// function. Cancel is safe to call more than once.
func (b *Broker) Subscribe() (<-chan model.Notification, func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	ch := make(chan model.Notification, subscriberBuffer)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers a notification to every subscriber, dropping it for any
// whose buffer is full.
func (b *Broker) Publish(n model.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

// Subscribers returns the current listener count.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
