package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abdulachik/twapi/internal/db/migrations"
	_ "modernc.org/sqlite"
)

// Store wraps the sqlite connection holding accounts, upload history and
// webhook events.
type Store struct {
	*sql.DB
	*Queries
}

// NewStore opens (creating if needed) the database at dbPath.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create directory for %s: %w", dbPath, err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	sqlDB.SetMaxOpenConns(1)

	// WAL lets the webhook server write while the CLI reads history
	if _, err := sqlDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	store := &Store{
		DB:      sqlDB,
		Queries: New(sqlDB),
	}

	return store, nil
}

// Migrate brings the twapi schema (accounts, uploads, webhook_events) up to
// date. Each embedded file runs in its own transaction and is recorded in
// schema_migrations by file name.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.ExecContext(ctx, createSchemaMigrations); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	pending, err := s.pendingMigrations(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		slog.Debug("twapi schema up to date")
		return nil
	}

	slog.Info("migrating twapi schema", "pending", len(pending))
	for _, file := range pending {
		if err := s.applyMigration(ctx, file); err != nil {
			return err
		}
		slog.Info("schema version recorded", "version", file)
	}
	return nil
}

const createSchemaMigrations = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// pendingMigrations lists embedded .sql files missing from
// schema_migrations, in file name order.
func (s *Store) pendingMigrations(ctx context.Context) ([]string, error) {
	rows, err := s.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("load schema versions: %w", err)
	}
	defer rows.Close()

	recorded := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan schema version: %w", err)
		}
		recorded[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load schema versions: %w", err)
	}

	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list embedded schema files: %w", err)
	}
	sort.Strings(files)

	var pending []string
	for _, file := range files {
		if !recorded[file] {
			pending = append(pending, file)
		}
	}
	return pending, nil
}

func (s *Store) applyMigration(ctx context.Context, file string) error {
	content, err := fs.ReadFile(migrations.FS, file)
	if err != nil {
		return fmt.Errorf("read schema file %s: %w", file, err)
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema %s: %w", file, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, extractUpMigration(string(content))); err != nil {
		return fmt.Errorf("apply schema %s: %w", file, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", file); err != nil {
		return fmt.Errorf("record schema version %s: %w", file, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema %s: %w", file, err)
	}
	return nil
}

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// extractUpMigration returns the statements between the Up and Down markers.
func extractUpMigration(content string) string {
	up := content
	if idx := strings.Index(up, downMarker); idx != -1 {
		up = up[:idx]
	}
	up = strings.TrimSpace(up)
	up = strings.TrimPrefix(up, upMarker)
	return strings.TrimSpace(up)
}

// extractDownMigration returns the statements after the Down marker.
func extractDownMigration(content string) string {
	idx := strings.Index(content, downMarker)
	if idx == -1 {
		return ""
	}
	return strings.TrimSpace(content[idx+len(downMarker):])
}

// Rollback reverts the most recently applied migration.
func (s *Store) Rollback(ctx context.Context) (string, error) {
	var version string
	err := s.QueryRowContext(ctx, "SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query latest migration: %w", err)
	}

	content, err := fs.ReadFile(migrations.FS, version)
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", version, err)
	}
	down := extractDownMigration(string(content))
	if down == "" {
		return "", fmt.Errorf("migration %s has no down section", version)
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, down); err != nil {
		tx.Rollback()
		return "", fmt.Errorf("revert migration %s: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", version); err != nil {
		tx.Rollback()
		return "", fmt.Errorf("unrecord migration %s: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit rollback %s: %w", version, err)
	}

	slog.Info("migration reverted", "file", version)
	return version, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}
