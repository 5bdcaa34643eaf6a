// internal/events/hub.go
//
// Package events fans lobby membership events out to websocket subscribers.
// The hub is fed by the API layer after a transition succeeds; it is never on
// the coordinator's store path, and a slow subscriber only loses its own
// events.
package events

import (
	"sync"
	"time"
)

// Event types published on the lobby feed.
const (
	TypeUserJoined   = "user_joined"
	TypeUserLeft     = "user_left"
	TypeUserKicked   = "user_kicked"
	TypeUsersInvited = "users_invited"
)

// Event is one lobby membership change.
type Event struct {
	Type      string    `json:"type"`
	LobbyID   string    `json:"lobbyId"`
	UserID    string    `json:"userId,omitempty"`
	ActorID   string    `json:"actorId,omitempty"`
	UserIDs   []string  `json:"userIds,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const subscriberBuffer = 16

// Hub tracks subscribers per lobby id.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for one lobby's events. The returned cancel
// function unregisters it and closes the channel; it is safe to call once.
func (h *Hub) Subscribe(lobbyID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	set, ok := h.subs[lobbyID]
	if !ok {
		set = make(map[chan Event]struct{})
		h.subs[lobbyID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[lobbyID]; ok {
			if _, live := set[ch]; live {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, lobbyID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber of its lobby. Sends never
// block: a subscriber whose buffer is full misses the event.
func (h *Hub) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[ev.LobbyID] {
		select {
		case ch <- ev:
		default:
		}
	}
}
