// internal/handlers/friend.go
package handlers

import (
	"encoding/json"
	"net/http"
)

type friendTargetRequest struct {
	FriendID string `json:"friendId"`
}

// SendFriendInviteHandler sends a friend request from the authenticated user.
//
// Request payload: { "friendId": "receiver-user-id" }
func (s *Server) SendFriendInviteHandler(w http.ResponseWriter, r *http.Request) {
	senderID, err := s.authedUser(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var req friendTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FriendID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.FriendID == senderID {
		http.Error(w, "cannot friend yourself", http.StatusBadRequest)
		return
	}

	if err := s.Coordinator.SendFriendInvite(r.Context(), senderID, req.FriendID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte("friend request sent"))
}

// AcceptFriendInviteHandler accepts a pending request that was sent to the
// authenticated user.
//
// Request payload: { "friendId": "sender-user-id" }
func (s *Server) AcceptFriendInviteHandler(w http.ResponseWriter, r *http.Request) {
	receiverID, err := s.authedUser(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var req friendTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FriendID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.Coordinator.AcceptFriendInvite(r.Context(), req.FriendID, receiverID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("friend request accepted"))
}

// DeclineFriendInviteHandler declines a pending request sent to the
// authenticated user.
//
// Request payload: { "friendId": "sender-user-id" }
func (s *Server) DeclineFriendInviteHandler(w http.ResponseWriter, r *http.Request) {
	receiverID, err := s.authedUser(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var req friendTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FriendID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.Coordinator.RemoveFriendInvite(r.Context(), req.FriendID, receiverID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("friend request declined"))
}

// RemoveFriendHandler removes the friendship between the authenticated user
// and the named friend.
//
// Request payload: { "friendId": "other-user-id" }
func (s *Server) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authedUser(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var req friendTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FriendID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.Coordinator.RemoveFriend(r.Context(), userID, req.FriendID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("friend removed"))
}
