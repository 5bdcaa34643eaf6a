// internal/handlers/lobby_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
)

// LobbyEventsHandler streams a lobby's membership events over a websocket.
// The path carries the lobby id: /lobby/ws/{lobbyId}. Subscribers only
// observe; all mutations go through the HTTP endpoints.
func (s *Server) LobbyEventsHandler(w http.ResponseWriter, r *http.Request) {
	lobbyID := strings.TrimPrefix(r.URL.Path, "/lobby/ws/")
	if lobbyID == "" {
		http.Error(w, "missing lobby id", http.StatusBadRequest)
		return
	}

	if _, err := s.authedUser(r); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	// Resolve before upgrading so a bogus id gets a plain 404.
	if _, err := s.Coordinator.GetLobbyInfo(r.Context(), lobbyID); err != nil {
		s.writeError(w, err)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.Logger.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	ch, cancelSub := s.Events.Subscribe(lobbyID)
	defer cancelSub()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain reads only to notice the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := c.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "bye")
			return
		case ev, ok := <-ch:
			if !ok {
				c.Close(websocket.StatusNormalClosure, "subscription closed")
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.Logger.Warnf("marshal lobby event: %v", err)
				continue
			}
			if err := c.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}
