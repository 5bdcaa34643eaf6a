// internal/store/postgres/postgres.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CullanAriyawanse/eelo/internal/store"
)

// Store implements the substrate contract on Postgres, holding every record
// as one jsonb document in a single table keyed by (collection, key). The
// jsonb operators give the same atomic list semantics the contract asks for:
// || appends under the row lock, and #- with a stale index is a no-op.
type Store struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection text NOT NULL,
	key        text NOT NULL,
	doc        jsonb NOT NULL,
	PRIMARY KEY (collection, key)
)`

// Connect opens a pgx pool against dsn, verifies connectivity, and ensures
// the documents table exists.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure documents table: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Put(ctx context.Context, collection, key string, rec store.Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, key, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, key, doc)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, key) DO UPDATE SET doc = EXCLUDED.doc`,
		collection, key, doc,
	)
	if err != nil {
		return store.Unavailable(fmt.Errorf("put %s/%s: %w", collection, key, err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, key string) (store.Record, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM documents WHERE collection = $1 AND key = $2`,
		collection, key,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get %s/%s: %w", collection, key, store.ErrNotFound)
	}
	if err != nil {
		return nil, store.Unavailable(fmt.Errorf("get %s/%s: %w", collection, key, err))
	}

	var rec store.Record
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal %s/%s: %w", collection, key, err)
	}
	return rec, nil
}

func (s *Store) UpdateAppendToList(ctx context.Context, collection, key, listField string, value any) error {
	val, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal list value for %s/%s: %w", collection, key, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, key, doc)
		VALUES ($1, $2, jsonb_build_object($3::text, jsonb_build_array($4::jsonb)))
		ON CONFLICT (collection, key) DO UPDATE
		SET doc = jsonb_set(
			documents.doc,
			ARRAY[$3::text],
			coalesce(documents.doc -> $3::text, '[]'::jsonb) || jsonb_build_array($4::jsonb)
		)`,
		collection, key, listField, val,
	)
	if err != nil {
		return store.Unavailable(fmt.Errorf("append %s/%s %s: %w", collection, key, listField, err))
	}
	return nil
}

func (s *Store) UpdateRemoveAtIndex(ctx context.Context, collection, key, listField string, index int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET doc = doc #- ARRAY[$3::text, $4::text]
		WHERE collection = $1 AND key = $2`,
		collection, key, listField, strconv.Itoa(index),
	)
	if err != nil {
		return store.Unavailable(fmt.Errorf("remove %s/%s %s[%d]: %w", collection, key, listField, index, err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("remove %s/%s %s[%d]: %w", collection, key, listField, index, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ScanByKeyPrefix(ctx context.Context, collection, prefix string) ([]store.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT doc FROM documents
		WHERE collection = $1 AND key LIKE $2 || '%'
		ORDER BY key`,
		collection, prefix,
	)
	if err != nil {
		return nil, store.Unavailable(fmt.Errorf("scan %s prefix %q: %w", collection, prefix, err))
	}
	defer rows.Close()

	var recs []store.Record
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan row in %s: %w", collection, err)
		}
		var rec store.Record
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal scan row in %s: %w", collection, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable(fmt.Errorf("scan %s prefix %q: %w", collection, prefix, err))
	}
	return recs, nil
}
