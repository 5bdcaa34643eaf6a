// internal/database/database.go
//
// Package database holds the two collection-facing stores. Each store
// addresses exactly one record per call; anything touching both collections
// lives in internal/relationship.
package database

import (
	"errors"

	"github.com/CullanAriyawanse/eelo/internal/store"
)

// Collection names as they appear in the substrate.
const (
	CollectionUsers   = "users"
	CollectionLobbies = "lobbies"
)

// User list fields addressable by targeted list mutation.
const (
	ListLobbies       = "lobbies"
	ListLobbyInvites  = "lobbyInvites"
	ListFriends       = "friends"
	ListFriendInvites = "friendInvites"
)

var (
	// ErrAlreadyExists indicates a create collided with an existing record.
	ErrAlreadyExists = errors.New("database: already exists")

	// ErrNotFound is the store's miss, re-exported so callers depend on one
	// package for the data-layer taxonomy.
	ErrNotFound = store.ErrNotFound
)
