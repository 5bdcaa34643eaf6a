// internal/models/user.go
package models

// User is a record in the users collection, keyed by UserID. Every
// relationship the user participates in is denormalized onto this record as a
// list of ids; the owning lobby (or counterpart user) holds the other copy.
type User struct {
	UserID   string `json:"userId" dynamodbav:"userId"`
	Username string `json:"username" dynamodbav:"username"`

	// Lobbies holds the ids of lobbies this user is currently a member of.
	// An id appears here iff the lobby's member list carries this user.
	Lobbies []string `json:"lobbies" dynamodbav:"lobbies"`

	// LobbyInvites holds ids of lobbies the user has been invited to but has
	// not yet accepted or declined. A stale entry can survive a partially
	// completed accept; consumers must tolerate it.
	LobbyInvites []string `json:"lobbyInvites" dynamodbav:"lobbyInvites"`

	// Friends holds user ids of confirmed friends.
	Friends []string `json:"friends" dynamodbav:"friends"`

	// FriendInvites holds user ids of senders whose requests are pending.
	FriendInvites []string `json:"friendInvites" dynamodbav:"friendInvites"`
}

// List returns the relationship list stored under the given field name, or
// nil for an unknown name. Names match the record's serialized field names.
func (u *User) List(name string) []string {
	switch name {
	case "lobbies":
		return u.Lobbies
	case "lobbyInvites":
		return u.LobbyInvites
	case "friends":
		return u.Friends
	case "friendInvites":
		return u.FriendInvites
	}
	return nil
}

// NewUser returns a User with every relationship list initialized empty, so
// the stored record carries real lists rather than nulls.
func NewUser(userID, username string) *User {
	return &User{
		UserID:        userID,
		Username:      username,
		Lobbies:       []string{},
		LobbyInvites:  []string{},
		Friends:       []string{},
		FriendInvites: []string{},
	}
}
