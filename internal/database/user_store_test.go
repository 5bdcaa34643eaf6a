// internal/database/user_store_test.go
package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CullanAriyawanse/eelo/internal/database"
	"github.com/CullanAriyawanse/eelo/internal/store"
	"github.com/CullanAriyawanse/eelo/internal/store/memory"
)

func TestCreateAndGetUser(t *testing.T) {
	us := database.NewUserStore(memory.New())
	ctx := context.Background()

	created, err := us.CreateUser(ctx, "u1", "alice")
	require.NoError(t, err)
	require.Equal(t, "u1", created.UserID)

	got, err := us.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Empty(t, got.Lobbies)
	require.Empty(t, got.LobbyInvites)
	require.Empty(t, got.Friends)
	require.Empty(t, got.FriendInvites)
}

func TestCreateUserAlreadyExists(t *testing.T) {
	us := database.NewUserStore(memory.New())
	ctx := context.Background()

	_, err := us.CreateUser(ctx, "u1", "alice")
	require.NoError(t, err)

	_, err = us.CreateUser(ctx, "u1", "other")
	require.ErrorIs(t, err, database.ErrAlreadyExists)
}

func TestGetUserNotFound(t *testing.T) {
	us := database.NewUserStore(memory.New())

	_, err := us.GetUser(context.Background(), "nope")
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestAppendToList(t *testing.T) {
	us := database.NewUserStore(memory.New())
	ctx := context.Background()

	_, err := us.CreateUser(ctx, "u1", "alice")
	require.NoError(t, err)

	require.NoError(t, us.AppendToList(ctx, "u1", database.ListFriends, "u2"))
	require.NoError(t, us.AppendToList(ctx, "u1", database.ListFriends, "u3"))
	require.NoError(t, us.AppendToList(ctx, "u1", database.ListLobbyInvites, "LOBBY#x"))

	got, err := us.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"u2", "u3"}, got.Friends)
	require.Equal(t, []string{"LOBBY#x"}, got.LobbyInvites)
	require.Empty(t, got.Lobbies)
}

func TestRemoveFromListByValue(t *testing.T) {
	us := database.NewUserStore(memory.New())
	ctx := context.Background()

	_, err := us.CreateUser(ctx, "u1", "alice")
	require.NoError(t, err)
	for _, v := range []string{"a", "b", "c"} {
		require.NoError(t, us.AppendToList(ctx, "u1", database.ListFriends, v))
	}

	require.NoError(t, us.RemoveFromListByValue(ctx, "u1", database.ListFriends, "b"))

	got, err := us.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c"}, got.Friends)
}

func TestRemoveFromListByValueAbsentEntry(t *testing.T) {
	us := database.NewUserStore(memory.New())
	ctx := context.Background()

	_, err := us.CreateUser(ctx, "u1", "alice")
	require.NoError(t, err)

	err = us.RemoveFromListByValue(ctx, "u1", database.ListFriends, "ghost")
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestRemoveFromListByValueMissingUser(t *testing.T) {
	us := database.NewUserStore(memory.New())

	err := us.RemoveFromListByValue(context.Background(), "nope", database.ListFriends, "a")
	require.ErrorIs(t, err, database.ErrNotFound)
}

// Removing by value resolves the first occurrence only, so duplicates shed one
// entry per call.
func TestRemoveFromListByValueFirstOccurrence(t *testing.T) {
	us := database.NewUserStore(memory.New())
	ctx := context.Background()

	_, err := us.CreateUser(ctx, "u1", "alice")
	require.NoError(t, err)
	for _, v := range []string{"x", "x"} {
		require.NoError(t, us.AppendToList(ctx, "u1", database.ListLobbies, v))
	}

	require.NoError(t, us.RemoveFromListByValue(ctx, "u1", database.ListLobbies, "x"))

	got, err := us.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, got.Lobbies)
}

func TestRemoveFromListByIndexOutOfRange(t *testing.T) {
	us := database.NewUserStore(memory.New())
	ctx := context.Background()

	_, err := us.CreateUser(ctx, "u1", "alice")
	require.NoError(t, err)

	err = us.RemoveFromListByIndex(ctx, "u1", database.ListFriends, 3)
	require.ErrorIs(t, err, store.ErrIndexOutOfRange)
}
