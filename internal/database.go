package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const credentialsSchema = `
CREATE TABLE IF NOT EXISTS credentials (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore is a CredentialStore backed by a single sqlite table
type SQLiteStore struct {
	db *sql.DB
}

// OpenCredentialStore opens (creating if needed) the credential database at path.
// The special path ":memory:" opens a private in-memory database.
func OpenCredentialStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return nil, &StorageError{Op: "open", Err: fmt.Errorf("%s is a directory", path)}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, &StorageError{Op: "open", Err: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("failed to open database: %w", err)}
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}

	store, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wraps an open database and ensures the credentials table exists.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	// One connection: in-memory databases are per connection and writes stay serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(credentialsSchema); err != nil {
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("failed to create credentials table: %w", err)}
	}
	return &SQLiteStore{db: db}, nil
}

// Get returns the stored value or "" if the key is absent.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM credentials WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", &StorageError{Key: key, Op: "get", Err: err}
	}
	return value, nil
}

// Set inserts or replaces the value of key.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UnixMilli()); err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

// MultiRemove deletes all keys in one transaction.
func (s *SQLiteStore) MultiRemove(ctx context.Context, keys ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "remove", Err: err}
	}

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, "DELETE FROM credentials WHERE key = ?", key); err != nil {
			_ = tx.Rollback()
			return &StorageError{Key: key, Op: "remove", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "remove", Err: err}
	}
	return nil
}

// Keys returns the stored keys in alphabetical order.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM credentials ORDER BY key")
	if err != nil {
		return nil, &StorageError{Op: "get", Err: fmt.Errorf("query failed: %w", err)}
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, &StorageError{Op: "get", Err: fmt.Errorf("scan failed: %w", err)}
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "get", Err: fmt.Errorf("rows iteration error: %w", err)}
	}
	return keys, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
