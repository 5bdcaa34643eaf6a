// internal/handlers/user.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/CullanAriyawanse/eelo/internal/auth"
)

type createUserRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type createUserResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// CreateUserHandler creates a user and issues its session token. The token is
// returned in the body and set as an auth_token cookie.
func (s *Server) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Username == "" {
		http.Error(w, "userId and username are required", http.StatusBadRequest)
		return
	}

	user, err := s.Coordinator.CreateUser(r.Context(), req.UserID, req.Username)
	if err != nil {
		s.writeError(w, err)
		return
	}

	token, err := auth.CreateJWT(user.UserID)
	if err != nil {
		http.Error(w, "failed to create session token", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   auth.TokenMaxAgeSeconds(),
	})

	writeJSON(w, http.StatusCreated, createUserResponse{
		UserID:   user.UserID,
		Username: user.Username,
		Token:    token,
	})
}

// GetUserHandler returns the authenticated user's own record, relationship
// lists included.
func (s *Server) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authedUser(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	user, err := s.Coordinator.GetUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
