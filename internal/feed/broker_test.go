package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdeskhq/tripdesk/internal/model"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	broker := NewBroker()
	a, cancelA := broker.Subscribe()
	b, cancelB := broker.Subscribe()
	defer cancelA()
	defer cancelB()

	broker.Publish(model.Notification{ID: "n1", Title: "booking approved"})

	for _, ch := range []<-chan model.Notification{a, b} {
		select {
		case n := <-ch:
			assert.Equal(t, "n1", n.ID)
		case <-time.After(time.Second):
			t.Fatal("notification not delivered")
		}
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	broker := NewBroker()
	ch, cancel := broker.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		broker.Publish(model.Notification{ID: "n"})
	}

	// The subscriber keeps the buffered events and loses the overflow;
	// the publisher never blocked.
	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			assert.Equal(t, subscriberBuffer, received)
			return
		}
	}
}

func TestCancelUnsubscribesAndIsIdempotent(t *testing.T) {
	broker := NewBroker()
	ch, cancel := broker.Subscribe()
	require.Equal(t, 1, broker.Subscribers())

	cancel()
	cancel()
	assert.Zero(t, broker.Subscribers())

	// The channel is closed so a ranging consumer terminates.
	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancel reaches nobody and does not panic.
	broker.Publish(model.Notification{ID: "late"})
}
