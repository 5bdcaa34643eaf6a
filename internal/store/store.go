// Package store defines the contract the relationship layer assumes of the
// storage substrate: single-record get/put, atomic list-field mutation, and a
// key-prefix scan. No operation spans records and no cross-record transaction
// exists; every multi-record state change above this layer is an ordered
// sequence of these calls.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Record is one stored document, as decoded JSON. Drivers persist it however
// their engine represents documents; round-tripping through Encode/Decode
// keeps every driver's view of a record identical.
type Record map[string]any

var (
	// ErrNotFound indicates a point lookup or keyed mutation missed.
	ErrNotFound = errors.New("store: record not found")

	// ErrIndexOutOfRange indicates a list-index removal addressed a position
	// that no longer exists. Drivers whose engine treats this as a silent
	// no-op (DynamoDB, Postgres jsonb) never return it.
	ErrIndexOutOfRange = errors.New("store: list index out of range")

	// ErrUnavailable indicates the substrate call failed at the transport
	// level; the record state is unknown and the caller may retry.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the substrate contract. Each call is a blocking round trip; list
// mutations are atomic against the addressed record only.
type Store interface {
	// Put unconditionally writes the whole record.
	Put(ctx context.Context, collection, key string, rec Record) error

	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, collection, key string) (Record, error)

	// UpdateAppendToList atomically appends value to the named list field,
	// initializing the field (and, engine permitting, the record) if absent.
	UpdateAppendToList(ctx context.Context, collection, key, listField string, value any) error

	// UpdateRemoveAtIndex atomically removes exactly the element at index.
	// Out-of-range behavior is driver-defined: an error or a no-op.
	UpdateRemoveAtIndex(ctx context.Context, collection, key, listField string, index int) error

	// ScanByKeyPrefix returns every record whose key begins with prefix.
	ScanByKeyPrefix(ctx context.Context, collection, prefix string) ([]Record, error)
}

// Encode converts a typed value into a Record via its JSON form.
func Encode(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return rec, nil
}

// Decode converts a Record back into a typed value via its JSON form.
func Decode(rec Record, v any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// Unavailable classifies a transport-level driver error under ErrUnavailable,
// preserving the driver's message.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
