package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubSubscribePublish(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	hub.Publish("user-1", Event{UserID: "user-1", Event: "notification", Data: "hello"})

	select {
	case ev := <-ch:
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, "hello", ev.Data)
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestHubPublishToOtherUserNotDelivered(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	hub.Publish("user-2", Event{UserID: "user-2", Event: "notification"})

	select {
	case <-ch:
		t.Fatal("event for another user must not be delivered")
	default:
	}
}

func TestHubMultipleStreamsPerUser(t *testing.T) {
	hub := NewHub()

	ch1, cleanup1 := hub.Subscribe("user-1")
	ch2, cleanup2 := hub.Subscribe("user-1")
	defer cleanup1()
	defer cleanup2()

	require.Equal(t, 2, hub.SubscriberCount("user-1"))

	hub.Publish("user-1", Event{UserID: "user-1", Event: "ping"})

	assert.Len(t, ch1, 1)
	assert.Len(t, ch2, 1)
}

func TestHubCleanupRemovesStream(t *testing.T) {
	hub := NewHub()

	_, cleanup := hub.Subscribe("user-1")
	require.Equal(t, 1, hub.TotalSubscribers())

	cleanup()
	assert.Equal(t, 0, hub.TotalSubscribers())
	assert.Equal(t, 0, hub.SubscriberCount("user-1"))
}

func TestHubFullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("user-1")
	defer cleanup()

	// Channel buffer is 10; extra publishes are dropped, not blocked on.
	for i := 0; i < 25; i++ {
		hub.Publish("user-1", Event{UserID: "user-1", Event: "ping"})
	}

	assert.Len(t, ch, 10)
}

func TestHubPublishToMany(t *testing.T) {
	hub := NewHub()

	ch1, cleanup1 := hub.Subscribe("user-1")
	ch2, cleanup2 := hub.Subscribe("user-2")
	defer cleanup1()
	defer cleanup2()

	hub.PublishToMany([]string{"user-1", "user-2"}, Event{Event: "broadcast"})

	ev1 := <-ch1
	ev2 := <-ch2
	assert.Equal(t, "user-1", ev1.UserID)
	assert.Equal(t, "user-2", ev2.UserID)
}
