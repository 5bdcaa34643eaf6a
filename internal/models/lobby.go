// internal/models/lobby.go
package models

import "time"

// Roles a lobby member can hold. Exactly one owner exists per lobby, assigned
// at creation; admins and the owner may kick members and manage invites.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RolePlayer = "player"
)

// DefaultPoints is the point balance every membership starts with.
const DefaultPoints = 800

// Lobby is a record in the lobbies collection, keyed by LobbyID
// ("LOBBY#<uuid>", generated at creation).
type Lobby struct {
	LobbyID   string       `json:"lobbyId" dynamodbav:"lobbyId"`
	LobbyName string       `json:"lobbyName" dynamodbav:"lobbyName"`
	Members   []Membership `json:"members" dynamodbav:"members"`

	GamesPlayed int `json:"gamesPlayed" dynamodbav:"gamesPlayed"`
}

// Membership is one user's participation entry inside a lobby's member list.
// The user record's lobbies list holds the back-reference. Entries are created
// by join or accept-invite, removed by leave or kick, and never mutated.
type Membership struct {
	UserID   string    `json:"userId" dynamodbav:"userId"`
	Points   int       `json:"points" dynamodbav:"points"`
	Role     string    `json:"role" dynamodbav:"role"`
	JoinDate time.Time `json:"joinDate" dynamodbav:"joinDate"`

	GamesParticipated int `json:"gamesParticipated" dynamodbav:"gamesParticipated"`
}

// NewMembership builds a membership entry with the default starting points.
func NewMembership(userID, role string, joinDate time.Time) Membership {
	return Membership{
		UserID:   userID,
		Points:   DefaultPoints,
		Role:     role,
		JoinDate: joinDate,
	}
}

// MemberInfo is the flattened per-member view returned by the lobby info
// endpoint. Resolving a display name for the user id is a caller concern.
type MemberInfo struct {
	UserID            string    `json:"userId"`
	Points            int       `json:"points"`
	Role              string    `json:"role"`
	JoinDate          time.Time `json:"joinDate"`
	GamesParticipated int       `json:"gamesParticipated"`
}

// Info projects the membership into the external member-info shape.
func (m Membership) Info() MemberInfo {
	return MemberInfo{
		UserID:            m.UserID,
		Points:            m.Points,
		Role:              m.Role,
		JoinDate:          m.JoinDate,
		GamesParticipated: m.GamesParticipated,
	}
}

// CanModerate reports whether the role is allowed to kick members or manage
// invites on behalf of the lobby.
func (m Membership) CanModerate() bool {
	return m.Role == RoleAdmin || m.Role == RoleOwner
}
