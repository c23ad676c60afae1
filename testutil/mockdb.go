package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// CredentialsTableSQL matches the schema created by the credential store
const CredentialsTableSQL = `
CREATE TABLE IF NOT EXISTS credentials (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// CreateInMemoryDB creates an in-memory SQLite database for testing
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// every pooled connection would otherwise get its own empty database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(CredentialsTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create credentials table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// InsertCredential inserts a credential row into the database
func InsertCredential(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	insertSQL := "INSERT OR REPLACE INTO credentials (key, value, updated_at) VALUES (?, ?, 0)"
	if _, err := db.Exec(insertSQL, key, value); err != nil {
		t.Fatalf("Failed to insert credential %s: %v", key, err)
	}
}

// CountCredentials returns the number of stored credential rows
func CountCredentials(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM credentials").Scan(&n); err != nil {
		t.Fatalf("Failed to count credentials: %v", err)
	}
	return n
}
