// internal/handlers/lobby.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/CullanAriyawanse/eelo/internal/events"
)

type createLobbyRequest struct {
	LobbyName string `json:"lobbyName"`
}

type createLobbyResponse struct {
	LobbyID string `json:"lobbyId"`
}

// CreateLobbyHandler creates a lobby owned by the authenticated user.
func (s *Server) CreateLobbyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authedUser(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var req createLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.LobbyName == "" {
		http.Error(w, "lobbyName is required", http.StatusBadRequest)
		return
	}

	lobbyID, err := s.Coordinator.CreateLobby(r.Context(), req.LobbyName, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createLobbyResponse{LobbyID: lobbyID})
}

// GetLobbyInfoHandler returns the lobby's member-info records.
func (s *Server) GetLobbyInfoHandler(w http.ResponseWriter, r *http.Request) {
	lobbyID := r.URL.Query().Get("lobbyId")
	if lobbyID == "" {
		http.Error(w, "lobbyId is required", http.StatusBadRequest)
		return
	}

	infos, err := s.Coordinator.GetLobbyInfo(r.Context(), lobbyID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

type lobbyActionRequest struct {
	LobbyID string `json:"lobbyId"`
}

// JoinLobbyHandler adds the authenticated user to the lobby as a player.
func (s *Server) JoinLobbyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authedUser(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var req lobbyActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LobbyID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.Coordinator.AddUserToLobby(r.Context(), userID, req.LobbyID); err != nil {
		s.writeError(w, err)
		return
	}
	s.Events.Publish(events.Event{Type: events.TypeUserJoined, LobbyID: req.LobbyID, UserID: userID})
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("joined lobby"))
}

type inviteUsersRequest struct {
	UserIDs []string `json:"userIds"`
	LobbyID string   `json:"lobbyId"`
}

// InviteUsersHandler appends a pending invite to each listed user. Appends
// already applied stand even when a later one fails, so a non-200 response
// does not mean nothing happened.
func (s *Server) InviteUsersHandler(w http.ResponseWriter, r *http.Request) {
	actorID, err := s.authedUser(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var req inviteUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LobbyID == "" || len(req.UserIDs) == 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.Coordinator.InviteUsersToLobby(r.Context(), req.UserIDs, req.LobbyID); err != nil {
		s.writeError(w, err)
		return
	}
	s.Events.Publish(events.Event{
		Type:    events.TypeUsersInvited,
		LobbyID: req.LobbyID,
		ActorID: actorID,
		UserIDs: req.UserIDs,
	})
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("invites sent"))
}

// AcceptLobbyInviteHandler joins the lobby and consumes the pending invite.
func (s *Server) AcceptLobbyInviteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authedUser(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var req lobbyActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LobbyID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.Coordinator.AcceptLobbyInvite(r.Context(), userID, req.LobbyID); err != nil {
		s.writeError(w, err)
		return
	}
	s.Events.Publish(events.Event{Type: events.TypeUserJoined, LobbyID: req.LobbyID, UserID: userID})
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("invite accepted"))
}

// DeclineLobbyInviteHandler removes the pending invite without joining.
func (s *Server) DeclineLobbyInviteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authedUser(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var req lobbyActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LobbyID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.Coordinator.RemoveLobbyInvite(r.Context(), userID, req.LobbyID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("invite declined"))
}

// LeaveLobbyHandler removes the authenticated user's own membership.
func (s *Server) LeaveLobbyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authedUser(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var req lobbyActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LobbyID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.Coordinator.UserLeaveLobby(r.Context(), userID, req.LobbyID); err != nil {
		s.writeError(w, err)
		return
	}
	s.Events.Publish(events.Event{Type: events.TypeUserLeft, LobbyID: req.LobbyID, UserID: userID})
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("left lobby"))
}

type kickUserRequest struct {
	UserID  string `json:"userId"`
	LobbyID string `json:"lobbyId"`
}

// KickUserHandler removes another member on behalf of an admin or the owner.
func (s *Server) KickUserHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := s.authedUser(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var req kickUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LobbyID == "" || req.UserID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.Coordinator.KickUserFromLobby(r.Context(), adminID, req.UserID, req.LobbyID); err != nil {
		s.writeError(w, err)
		return
	}
	s.Events.Publish(events.Event{
		Type:    events.TypeUserKicked,
		LobbyID: req.LobbyID,
		UserID:  req.UserID,
		ActorID: adminID,
	})
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("user kicked"))
}
