// internal/database/lobby_store.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/CullanAriyawanse/eelo/internal/models"
	"github.com/CullanAriyawanse/eelo/internal/store"
)

// LobbyKeyPrefix is baked into every generated lobby id, so an id doubles as
// its own scan prefix.
const LobbyKeyPrefix = "LOBBY#"

// MembersField is the lobby record's member list field.
const MembersField = "members"

// LobbyStore owns records in the lobbies collection.
type LobbyStore struct {
	store store.Store
}

// NewLobbyStore returns a LobbyStore over the given substrate.
func NewLobbyStore(s store.Store) *LobbyStore {
	return &LobbyStore{store: s}
}

// CreateLobby generates a fresh lobby id, writes the lobby with the owner as
// its sole member, and returns the id.
func (ls *LobbyStore) CreateLobby(ctx context.Context, lobbyName string, owner models.Membership) (string, error) {
	lobbyID := LobbyKeyPrefix + uuid.NewString()
	lobby := models.Lobby{
		LobbyID:   lobbyID,
		LobbyName: lobbyName,
		Members:   []models.Membership{owner},
	}

	rec, err := store.Encode(lobby)
	if err != nil {
		return "", fmt.Errorf("create lobby %q: %w", lobbyName, err)
	}
	if err := ls.store.Put(ctx, CollectionLobbies, lobbyID, rec); err != nil {
		return "", fmt.Errorf("create lobby %q: %w", lobbyName, err)
	}
	return lobbyID, nil
}

// GetLobby returns the lobby record or ErrNotFound.
func (ls *LobbyStore) GetLobby(ctx context.Context, lobbyID string) (*models.Lobby, error) {
	rec, err := ls.store.Get(ctx, CollectionLobbies, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("get lobby %s: %w", lobbyID, err)
	}
	var lobby models.Lobby
	if err := store.Decode(rec, &lobby); err != nil {
		return nil, fmt.Errorf("get lobby %s: %w", lobbyID, err)
	}
	return &lobby, nil
}

// FindLobbiesByIDPrefix returns every lobby whose id begins with idPrefix via
// the substrate's scan path.
func (ls *LobbyStore) FindLobbiesByIDPrefix(ctx context.Context, idPrefix string) ([]models.Lobby, error) {
	recs, err := ls.store.ScanByKeyPrefix(ctx, CollectionLobbies, idPrefix)
	if err != nil {
		return nil, fmt.Errorf("find lobbies by prefix %q: %w", idPrefix, err)
	}
	lobbies := make([]models.Lobby, 0, len(recs))
	for _, rec := range recs {
		var lobby models.Lobby
		if err := store.Decode(rec, &lobby); err != nil {
			return nil, fmt.Errorf("find lobbies by prefix %q: %w", idPrefix, err)
		}
		lobbies = append(lobbies, lobby)
	}
	return lobbies, nil
}

// AppendMember atomically appends a membership entry to the lobby's member
// list. Nothing deduplicates here; a repeated join appends a second entry.
func (ls *LobbyStore) AppendMember(ctx context.Context, lobbyID string, m models.Membership) error {
	value, err := store.Encode(m)
	if err != nil {
		return fmt.Errorf("append member %s to lobby %s: %w", m.UserID, lobbyID, err)
	}
	if err := ls.store.UpdateAppendToList(ctx, CollectionLobbies, lobbyID, MembersField, map[string]any(value)); err != nil {
		return fmt.Errorf("append member %s to lobby %s: %w", m.UserID, lobbyID, err)
	}
	return nil
}

// RemoveMemberByUserID reads the member list, resolves the user's current
// index, and removes that index. As with the user-side lists, the read and
// the removal are separate calls and the index can go stale in between.
func (ls *LobbyStore) RemoveMemberByUserID(ctx context.Context, lobbyID, userID string) error {
	lobby, err := ls.GetLobby(ctx, lobbyID)
	if err != nil {
		return fmt.Errorf("remove member %s from lobby %s: %w", userID, lobbyID, err)
	}

	index := -1
	for i, m := range lobby.Members {
		if m.UserID == userID {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("remove member %s from lobby %s: entry absent: %w", userID, lobbyID, ErrNotFound)
	}

	if err := ls.store.UpdateRemoveAtIndex(ctx, CollectionLobbies, lobbyID, MembersField, index); err != nil {
		return fmt.Errorf("remove member %s from lobby %s: %w", userID, lobbyID, err)
	}
	return nil
}
