package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastsToAllSubscribers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := hub.Subscribe(ctx)
	require.NoError(t, err)
	b, err := hub.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, PublishJSON(ctx, hub, Event{Type: TypeDocumentChanged, Op: "reset"}))

	for _, ch := range []<-chan []byte{a, b} {
		select {
		case msg := <-ch:
			var ev Event
			require.NoError(t, json.Unmarshal(msg, &ev))
			assert.Equal(t, "reset", ev.Op)
		case <-time.After(time.Second):
			t.Fatal("expected message")
		}
	}
}

func TestHub_UnsubscribesOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := hub.Subscribe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Subscribers())

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
	assert.Equal(t, 0, hub.Subscribers())
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := hub.Subscribe(ctx)
	require.NoError(t, err)

	for i := 0; i < defaultHubBuffer*2; i++ {
		require.NoError(t, hub.Publish(ctx, []byte("x")))
	}
}
