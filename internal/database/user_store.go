// internal/database/user_store.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/CullanAriyawanse/eelo/internal/models"
	"github.com/CullanAriyawanse/eelo/internal/store"
)

// UserStore owns records in the users collection.
type UserStore struct {
	store store.Store
}

// NewUserStore returns a UserStore over the given substrate.
func NewUserStore(s store.Store) *UserStore {
	return &UserStore{store: s}
}

// CreateUser writes a fresh user record with every relationship list empty.
// The existence check and the put are two separate substrate calls; a
// concurrent create racing between them is last-write-wins, which the
// substrate's unconditional put cannot prevent.
func (us *UserStore) CreateUser(ctx context.Context, userID, username string) (*models.User, error) {
	_, err := us.store.Get(ctx, CollectionUsers, userID)
	if err == nil {
		return nil, fmt.Errorf("create user %s: %w", userID, ErrAlreadyExists)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("create user %s: %w", userID, err)
	}

	user := models.NewUser(userID, username)
	rec, err := store.Encode(user)
	if err != nil {
		return nil, fmt.Errorf("create user %s: %w", userID, err)
	}
	if err := us.store.Put(ctx, CollectionUsers, userID, rec); err != nil {
		return nil, fmt.Errorf("create user %s: %w", userID, err)
	}
	return user, nil
}

// GetUser returns the user record or ErrNotFound.
func (us *UserStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	rec, err := us.store.Get(ctx, CollectionUsers, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	var user models.User
	if err := store.Decode(rec, &user); err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return &user, nil
}

// AppendToList atomically appends value to one of the user's relationship
// lists, initializing the list if it is absent.
func (us *UserStore) AppendToList(ctx context.Context, userID, listName, value string) error {
	if err := us.store.UpdateAppendToList(ctx, CollectionUsers, userID, listName, value); err != nil {
		return fmt.Errorf("append %s to user %s %s: %w", value, userID, listName, err)
	}
	return nil
}

// RemoveFromListByValue reads the user's list, resolves the current index of
// value, and removes that index. The resolving read and the removal are two
// substrate calls; a concurrent mutation between them can shift the index,
// and the removal then drops a neighboring entry. The substrate offers only
// index-addressed removal, so this stays a known race.
func (us *UserStore) RemoveFromListByValue(ctx context.Context, userID, listName, value string) error {
	user, err := us.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("remove %s from user %s %s: %w", value, userID, listName, err)
	}

	index := -1
	for i, v := range user.List(listName) {
		if v == value {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("remove %s from user %s %s: entry absent: %w", value, userID, listName, ErrNotFound)
	}
	return us.RemoveFromListByIndex(ctx, userID, listName, index)
}

// RemoveFromListByIndex removes the element at index from the named list.
func (us *UserStore) RemoveFromListByIndex(ctx context.Context, userID, listName string, index int) error {
	if err := us.store.UpdateRemoveAtIndex(ctx, CollectionUsers, userID, listName, index); err != nil {
		return fmt.Errorf("remove user %s %s[%d]: %w", userID, listName, index, err)
	}
	return nil
}
