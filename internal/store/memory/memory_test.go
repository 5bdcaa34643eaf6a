// internal/store/memory/memory_test.go
package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CullanAriyawanse/eelo/internal/store"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Put(ctx, "users", "u1", store.Record{"userId": "u1", "username": "alice"})
	require.NoError(t, err)

	rec, err := s.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.Equal(t, "alice", rec["username"])
}

func TestGetMissing(t *testing.T) {
	s := New()

	_, err := s.Get(context.Background(), "users", "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAppendUpsertsMissingRecord(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Appending to a record that does not exist creates it with the list.
	require.NoError(t, s.UpdateAppendToList(ctx, "users", "u1", "friends", "a"))
	require.NoError(t, s.UpdateAppendToList(ctx, "users", "u1", "friends", "b"))

	rec, err := s.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.Equal(t, []any{"a", "b"}, rec["friends"])
}

func TestAppendInitializesAbsentList(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "users", "u1", store.Record{"userId": "u1"}))
	require.NoError(t, s.UpdateAppendToList(ctx, "users", "u1", "friends", "a"))

	rec, err := s.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.Equal(t, []any{"a"}, rec["friends"])
}

func TestRemoveAtIndex(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, v := range []string{"a", "b", "c"} {
		require.NoError(t, s.UpdateAppendToList(ctx, "users", "u1", "friends", v))
	}

	require.NoError(t, s.UpdateRemoveAtIndex(ctx, "users", "u1", "friends", 1))

	rec, err := s.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.Equal(t, []any{"a", "c"}, rec["friends"])
}

func TestRemoveAtIndexMissingRecord(t *testing.T) {
	s := New()

	err := s.UpdateRemoveAtIndex(context.Background(), "users", "nope", "friends", 0)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoveAtIndexOutOfRange(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.UpdateAppendToList(ctx, "users", "u1", "friends", "a"))

	require.ErrorIs(t, s.UpdateRemoveAtIndex(ctx, "users", "u1", "friends", 5), store.ErrIndexOutOfRange)
	require.ErrorIs(t, s.UpdateRemoveAtIndex(ctx, "users", "u1", "friends", -1), store.ErrIndexOutOfRange)

	rec, err := s.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.Equal(t, []any{"a"}, rec["friends"])
}

func TestScanByKeyPrefix(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "lobbies", "LOBBY#b", store.Record{"lobbyId": "LOBBY#b"}))
	require.NoError(t, s.Put(ctx, "lobbies", "LOBBY#a", store.Record{"lobbyId": "LOBBY#a"}))
	require.NoError(t, s.Put(ctx, "lobbies", "OTHER#x", store.Record{"lobbyId": "OTHER#x"}))

	recs, err := s.ScanByKeyPrefix(ctx, "lobbies", "LOBBY#")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "LOBBY#a", recs[0]["lobbyId"])
	require.Equal(t, "LOBBY#b", recs[1]["lobbyId"])

	recs, err = s.ScanByKeyPrefix(ctx, "lobbies", "LOBBY#a")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	recs, err = s.ScanByKeyPrefix(ctx, "lobbies", "ZZZ")
	require.NoError(t, err)
	require.Empty(t, recs)
}

// Reads clone the stored record, and that clone must happen inside the
// store's critical section: list updates mutate the stored map in place, so a
// read racing a write on the same record would otherwise touch a map mid-
// mutation. Run with the race detector enabled.
func TestConcurrentReadsAndListMutations(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "users", "u1", store.Record{"userId": "u1", "friends": []any{"seed"}}))

	const iterations = 1000
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if err := s.UpdateAppendToList(ctx, "users", "u1", "friends", "x"); err != nil {
				t.Errorf("append: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			// The list may momentarily be empty; only a genuine failure counts.
			err := s.UpdateRemoveAtIndex(ctx, "users", "u1", "friends", 0)
			if err != nil && !errors.Is(err, store.ErrIndexOutOfRange) {
				t.Errorf("remove: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if _, err := s.Get(ctx, "users", "u1"); err != nil {
				t.Errorf("get: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if _, err := s.ScanByKeyPrefix(ctx, "users", "u"); err != nil {
				t.Errorf("scan: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	rec, err := s.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.Equal(t, "u1", rec["userId"])
}

func TestCallerCannotMutateStoredRecord(t *testing.T) {
	s := New()
	ctx := context.Background()

	in := store.Record{"userId": "u1", "friends": []any{"a"}}
	require.NoError(t, s.Put(ctx, "users", "u1", in))

	// Mutating the record we put in must not reach the store.
	in["userId"] = "tampered"

	out, err := s.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.Equal(t, "u1", out["userId"])

	// Nor must mutating what we read back.
	out["userId"] = "tampered"
	again, err := s.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.Equal(t, "u1", again["userId"])
}
