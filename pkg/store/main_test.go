package store

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// setupTestStore creates a file-backed SQLite database and a Store for
// testing. It uses t.Cleanup to ensure resources are released.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbFile+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(db, logger)
}

// mustCreateUser registers a user with fixed names as test fixture data.
func mustCreateUser(t *testing.T, s *Store, username string) User {
	t.Helper()

	ctx := context.Background()
	id, err := s.CreateUser(ctx, username, "not-a-real-hash", "Test", "User")
	if err != nil {
		t.Fatalf("CreateUser(%q) error = %v", username, err)
	}
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		t.Fatalf("GetUserByID(%d) error = %v", id, err)
	}
	return u
}
