// internal/store/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/CullanAriyawanse/eelo/internal/store"
)

// Store is an in-process implementation of the substrate contract, guarding a
// map of collections with a single mutex. It is the default driver for local
// runs and the fixture for every test. Records are cloned through their JSON
// form on the way in and out so callers never share memory with the store,
// matching the isolation a networked engine gives for free.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]store.Record
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{collections: make(map[string]map[string]store.Record)}
}

func (s *Store) Put(ctx context.Context, collection, key string, rec store.Record) error {
	clone, err := cloneRecord(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coll(collection)[key] = clone
	return nil
}

func (s *Store) Get(ctx context.Context, collection, key string) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.coll(collection)[key]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, store.ErrNotFound)
	}
	// Clone while holding the lock; the stored map is mutated in place by the
	// list updates.
	return cloneRecord(rec)
}

// UpdateAppendToList creates the record if it is absent, the way a DynamoDB
// UpdateItem upserts, so the drivers stay interchangeable.
func (s *Store) UpdateAppendToList(ctx context.Context, collection, key, listField string, value any) error {
	clone, err := cloneValue(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(collection)
	rec, ok := c[key]
	if !ok {
		rec = store.Record{}
		c[key] = rec
	}
	list, _ := rec[listField].([]any)
	rec[listField] = append(list, clone)
	return nil
}

func (s *Store) UpdateRemoveAtIndex(ctx context.Context, collection, key, listField string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.coll(collection)[key]
	if !ok {
		return fmt.Errorf("remove %s/%s[%d]: %w", collection, key, index, store.ErrNotFound)
	}
	list, _ := rec[listField].([]any)
	if index < 0 || index >= len(list) {
		return fmt.Errorf("remove %s/%s %s[%d]: %w", collection, key, listField, index, store.ErrIndexOutOfRange)
	}
	rec[listField] = append(list[:index], list[index+1:]...)
	return nil
}

func (s *Store) ScanByKeyPrefix(ctx context.Context, collection, prefix string) ([]store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(collection)
	keys := make([]string, 0, len(c))
	for k := range c {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	// Clone while holding the lock, as in Get.
	out := make([]store.Record, 0, len(keys))
	for _, k := range keys {
		clone, err := cloneRecord(c[k])
		if err != nil {
			return nil, err
		}
		out = append(out, clone)
	}
	return out, nil
}

// coll must be called with the mutex held.
func (s *Store) coll(collection string) map[string]store.Record {
	c, ok := s.collections[collection]
	if !ok {
		c = make(map[string]store.Record)
		s.collections[collection] = c
	}
	return c
}

func cloneRecord(rec store.Record) (store.Record, error) {
	return store.Encode(rec)
}

func cloneValue(value any) (any, error) {
	rec, err := store.Encode(map[string]any{"v": value})
	if err != nil {
		return nil, err
	}
	return rec["v"], nil
}
