package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFanout(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	first, cancelFirst := hub.Subscribe()
	second, cancelSecond := hub.Subscribe()
	defer cancelSecond()

	hub.Publish(ctx, Event{Type: TypeTaskCreated, Data: map[string]any{"task_id": int64(1)}})

	got := <-first
	assert.Equal(t, TypeTaskCreated, got.Type)
	got = <-second
	assert.Equal(t, TypeTaskCreated, got.Type)

	cancelFirst()
	hub.Publish(ctx, Event{Type: TypeTaskDeleted})

	got = <-second
	assert.Equal(t, TypeTaskDeleted, got.Type)

	// The cancelled subscriber's channel is closed and drained.
	_, open := <-first
	assert.False(t, open)

	// Cancelling twice is safe.
	cancelFirst()
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	ch, cancel := hub.Subscribe()
	defer cancel()

	// Overfill the buffer; Publish must never block.
	for i := 0; i < defaultSubscriberBuffer+5; i++ {
		hub.Publish(ctx, Event{Type: TypeTaskUpdated})
	}

	require.Len(t, ch, defaultSubscriberBuffer)
}

func TestFanoutAndDiscard(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	pub := Fanout{Discard{}, hub}
	pub.Publish(context.Background(), Event{Type: TypeCommentAdded})

	got := <-ch
	assert.Equal(t, TypeCommentAdded, got.Type)
}
