package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("creates directory and database", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "subdir", "test.db")

		ctx := context.Background()
		store, err := NewStore(ctx, dbPath)
		require.NoError(t, err)
		defer store.Close()

		// Verify file exists
		_, err = os.Stat(dbPath)
		assert.NoError(t, err)

		// Verify we can query
		var result int
		err = store.QueryRowContext(ctx, "SELECT 1").Scan(&result)
		assert.NoError(t, err)
		assert.Equal(t, 1, result)
	})

	t.Run("sets WAL mode", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		ctx := context.Background()
		store, err := NewStore(ctx, dbPath)
		require.NoError(t, err)
		defer store.Close()

		var mode string
		err = store.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode)
		assert.NoError(t, err)
		assert.Equal(t, "wal", mode)
	})

	t.Run("enables foreign keys", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		ctx := context.Background()
		store, err := NewStore(ctx, dbPath)
		require.NoError(t, err)
		defer store.Close()

		var fk int
		err = store.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk)
		assert.NoError(t, err)
		assert.Equal(t, 1, fk)
	})
}

func TestStore_Migrate(t *testing.T) {
	t.Run("applies migrations", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		ctx := context.Background()
		store, err := NewStore(ctx, dbPath)
		require.NoError(t, err)
		defer store.Close()

		err = store.Migrate(ctx)
		require.NoError(t, err)

		for _, table := range []string{"accounts", "uploads", "webhook_events"} {
			var tableName string
			err = store.QueryRowContext(ctx,
				"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableName)
			assert.NoError(t, err)
			assert.Equal(t, table, tableName)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test.db")

		ctx := context.Background()
		store, err := NewStore(ctx, dbPath)
		require.NoError(t, err)
		defer store.Close()

		// Run twice
		err = store.Migrate(ctx)
		require.NoError(t, err)

		err = store.Migrate(ctx)
		require.NoError(t, err)

		count, err := store.CountWebhookEvents(ctx)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("records each schema file", func(t *testing.T) {
		store, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		defer store.Close()
		ctx := context.Background()

		_, err = store.ExecContext(ctx, createSchemaMigrations)
		require.NoError(t, err)
		pending, err := store.pendingMigrations(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"001_init.sql"}, pending)

		require.NoError(t, store.Migrate(ctx))
		pending, err = store.pendingMigrations(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)

		var version string
		require.NoError(t, store.QueryRowContext(ctx, "SELECT version FROM schema_migrations").Scan(&version))
		assert.Equal(t, "001_init.sql", version)
	})

	t.Run("rollback reverts latest", func(t *testing.T) {
		store := NewTestStore(t)
		ctx := context.Background()

		version, err := store.Rollback(ctx)
		require.NoError(t, err)
		assert.Equal(t, "001_init.sql", version)

		var n int
		err = store.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='uploads'").Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		version, err = store.Rollback(ctx)
		require.NoError(t, err)
		assert.Empty(t, version)

		require.NoError(t, store.Migrate(ctx))
		_, err = store.CountWebhookEvents(ctx)
		assert.NoError(t, err)
	})
}

func TestExtractUpMigration(t *testing.T) {
	t.Run("extracts up portion", func(t *testing.T) {
		content := `-- +migrate Up
CREATE TABLE test (id INTEGER);

-- +migrate Down
DROP TABLE test;
`
		result := extractUpMigration(content)
		assert.Equal(t, "CREATE TABLE test (id INTEGER);", result)
	})

	t.Run("handles no down marker", func(t *testing.T) {
		content := "CREATE TABLE test (id INTEGER);"
		result := extractUpMigration(content)
		assert.Equal(t, "CREATE TABLE test (id INTEGER);", result)
	})
}

func TestExtractDownMigration(t *testing.T) {
	content := `-- +migrate Up
CREATE TABLE test (id INTEGER);

-- +migrate Down
DROP TABLE test;
`
	assert.Equal(t, "DROP TABLE test;", extractDownMigration(content))
	assert.Equal(t, "", extractDownMigration("CREATE TABLE test (id INTEGER);"))
}

// NewTestStore provides a test database for use in other packages.
func NewTestStore(t *testing.T) *Store {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	ctx := context.Background()
	store, err := NewStore(ctx, dbPath)
	require.NoError(t, err)

	err = store.Migrate(ctx)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
