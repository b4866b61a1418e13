// Package pgstore keeps SyncUp sessions in a PostgreSQL table.
//
// Expected schema:
//
//	CREATE TABLE session_kv (
//	    namespace TEXT NOT NULL,
//	    key       TEXT NOT NULL,
//	    value     TEXT NOT NULL,
//	    PRIMARY KEY (namespace, key)
//	);
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

const (
	getQuery    = `SELECT value FROM session_kv WHERE namespace = $1 AND key = $2`
	upsertQuery = `INSERT INTO session_kv (namespace, key, value) VALUES ($1, $2, $3)
ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value`
	deleteQuery = `DELETE FROM session_kv WHERE namespace = $1 AND key = $2`
	clearQuery  = `DELETE FROM session_kv WHERE namespace = $1`
)

// Store implements syncauth.Store on the session_kv table
type Store struct {
	db        *sql.DB
	namespace string
}

// Open connects with a lib/pq DSN and verifies the connection
func Open(ctx context.Context, dsn, namespace string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return New(db, namespace), nil
}

// New wraps an open database handle
func New(db *sql.DB, namespace string) *Store {
	if namespace == "" {
		namespace = "default"
	}
	return &Store{db: db, namespace: namespace}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getQuery, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, upsertQuery, s.namespace, key, value)
	return err
}

func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, deleteQuery, s.namespace, key)
	return err
}

// Clear deletes the rows of this namespace only
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, clearQuery, s.namespace)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
