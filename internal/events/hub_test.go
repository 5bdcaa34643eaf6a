// internal/events/hub_test.go
package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishReachesLobbySubscribersOnly(t *testing.T) {
	h := NewHub()

	chA, cancelA := h.Subscribe("LOBBY#a")
	defer cancelA()
	chB, cancelB := h.Subscribe("LOBBY#b")
	defer cancelB()

	h.Publish(Event{Type: TypeUserJoined, LobbyID: "LOBBY#a", UserID: "u1"})

	select {
	case ev := <-chA:
		require.Equal(t, TypeUserJoined, ev.Type)
		require.Equal(t, "u1", ev.UserID)
		require.False(t, ev.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("subscriber A received nothing")
	}

	select {
	case ev := <-chB:
		t.Fatalf("subscriber B received event for another lobby: %+v", ev)
	default:
	}
}

func TestCancelClosesChannel(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("LOBBY#a")
	cancel()

	_, open := <-ch
	require.False(t, open)

	// A second cancel is a no-op, and publishing after cancel must not panic.
	cancel()
	h.Publish(Event{Type: TypeUserLeft, LobbyID: "LOBBY#a", UserID: "u1"})
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("LOBBY#a")
	defer cancel()

	// Nothing drains, so everything past the buffer is dropped without
	// blocking the publisher.
	for i := 0; i < subscriberBuffer+5; i++ {
		h.Publish(Event{Type: TypeUserJoined, LobbyID: "LOBBY#a", UserID: "u1"})
	}

	require.Len(t, ch, subscriberBuffer)
}
