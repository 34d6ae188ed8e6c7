package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a single JSONB documents table:
//
//	CREATE TABLE IF NOT EXISTS documents (
//	    name       TEXT PRIMARY KEY,
//	    body       JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
// Upserts are atomic at the row level, so a crash mid-save never leaves
// a torn document behind.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the documents table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS documents (
		     name       TEXT PRIMARY KEY,
		     body       JSONB NOT NULL,
		     updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		 )`)
	if err != nil {
		return fmt.Errorf("store: migrate documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, name string, out any) (bool, error) {
	var body []byte
	err := s.pool.QueryRow(ctx,
		`SELECT body FROM documents WHERE name = $1`, name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: load %s: %w", name, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("store: decode %s: %w", name, err)
	}
	return true, nil
}

func (s *PostgresStore) Save(ctx context.Context, name string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", name, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (name, body, updated_at)
		 VALUES ($1, $2::JSONB, now())
		 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`,
		name, body)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", name, err)
	}
	return nil
}
