package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// MySQLKVStore stores keys in the kv_store table (see schema.InitializeDatabase)
type MySQLKVStore struct {
	db *sql.DB
}

// NewMySQLKVStore creates a new MySQL-backed store
func NewMySQLKVStore(db *sql.DB) *MySQLKVStore {
	return &MySQLKVStore{db: db}
}

// Get returns the value stored under key
func (s *MySQLKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT v
		FROM kv_store
		WHERE k = ?
		LIMIT 1
	`

	var v []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return v, nil
}

// Set upserts value under key
func (s *MySQLKVStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (k, v, updated_at)
		VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *MySQLKVStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_store WHERE k = ?`

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
