package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestInitializeSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	db, err := InitializeSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("InitializeSQLite failed: %v", err)
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='sessions'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check sessions table: %v", err)
	}
	if count != 1 {
		t.Error("Table sessions not found")
	}
}

func TestInitializeSQLite_WALMode(t *testing.T) {
	db, err := InitializeSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitializeSQLite failed: %v", err)
	}
	defer db.Close()

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("Failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected journal_mode='wal', got '%s'", journalMode)
	}
}

func TestInitializeSQLite_ForeignKeyEnabled(t *testing.T) {
	db, err := InitializeSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitializeSQLite failed: %v", err)
	}
	defer db.Close()

	var foreignKeys int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		t.Fatalf("Failed to query foreign_keys: %v", err)
	}
	if foreignKeys != 1 {
		t.Errorf("Expected foreign_keys=1, got %d", foreignKeys)
	}
}

func TestInitializeSQLite_ReopenExisting(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db1, err := InitializeSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("First InitializeSQLite failed: %v", err)
	}
	_, err = db1.Exec(`INSERT INTO sessions (id, created_at, backend, state, runs_requested, record_json)
		VALUES ('01J', '2026-01-01T00:00:00Z', 'dry', 'completed', 1, '{}')`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	db1.Close()

	db2, err := InitializeSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Second InitializeSQLite failed: %v", err)
	}
	defer db2.Close()

	var count int
	if err := db2.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		t.Fatalf("Failed to query sessions: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 session after reopen, got %d", count)
	}
}
