// internal/handlers/api_server.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/CullanAriyawanse/eelo/internal/auth"
	"github.com/CullanAriyawanse/eelo/internal/database"
	"github.com/CullanAriyawanse/eelo/internal/events"
	"github.com/CullanAriyawanse/eelo/internal/relationship"
	"github.com/CullanAriyawanse/eelo/internal/store"
)

// Server wires the HTTP surface to the coordinator. Handlers parse, call one
// coordinator method, publish the resulting lobby event, and serialize; every
// multi-record decision lives below this layer.
type Server struct {
	Coordinator *relationship.Coordinator
	Events      *events.Hub
	Logger      *logrus.Logger
}

// NewServer builds a Server over the coordinator and event hub.
func NewServer(c *relationship.Coordinator, hub *events.Hub, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{Coordinator: c, Events: hub, Logger: logger}
}

// Routes registers every endpoint on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/user/create", s.CreateUserHandler)
	mux.HandleFunc("/user/me", s.GetUserHandler)

	mux.HandleFunc("/lobby/create", s.CreateLobbyHandler)
	mux.HandleFunc("/lobby/info", s.GetLobbyInfoHandler)
	mux.HandleFunc("/lobby/join", s.JoinLobbyHandler)
	mux.HandleFunc("/lobby/invite", s.InviteUsersHandler)
	mux.HandleFunc("/lobby/invite/accept", s.AcceptLobbyInviteHandler)
	mux.HandleFunc("/lobby/invite/decline", s.DeclineLobbyInviteHandler)
	mux.HandleFunc("/lobby/leave", s.LeaveLobbyHandler)
	mux.HandleFunc("/lobby/kick", s.KickUserHandler)
	mux.HandleFunc("/lobby/ws/", s.LobbyEventsHandler)

	mux.HandleFunc("/friends/invite", s.SendFriendInviteHandler)
	mux.HandleFunc("/friends/accept", s.AcceptFriendInviteHandler)
	mux.HandleFunc("/friends/invite/decline", s.DeclineFriendInviteHandler)
	mux.HandleFunc("/friends/remove", s.RemoveFriendHandler)

	return mux
}

// authedUser resolves the acting user id from the auth_token cookie.
func (s *Server) authedUser(r *http.Request) (string, error) {
	cookie, err := r.Cookie("auth_token")
	if err != nil {
		return "", errors.New("missing auth_token")
	}
	return auth.AuthenticateJWT(cookie.Value)
}

// writeError maps the error taxonomy onto status codes. InconsistentState is
// checked before NotFound so detected drift is never reported as a plain
// missing record.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, relationship.ErrInconsistentState):
		http.Error(w, "inconsistent state: "+err.Error(), http.StatusConflict)
	case errors.Is(err, database.ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, relationship.ErrInvalidRole):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, database.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, store.ErrUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		// Unclassified errors carry step context (record keys, driver
		// messages) that belongs in the log, not the response body.
		s.Logger.WithError(err).Error("internal error")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
