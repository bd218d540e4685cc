package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully and are repeatable
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", "kv").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count, "table kv not found")

	require.NoError(t, db.RunMigrations())
}

// TestKVTable verifies the kv table structure
func TestKVTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO kv (key, value) VALUES (?, ?)`, "k", []byte("v"))
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO kv (key, value) VALUES (?, ?)`, "k", []byte("again"))
	require.Error(t, err, "duplicate keys must be rejected")
}
