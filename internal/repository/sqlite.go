package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// SQLiteMirrorStore keeps mirror entries in a single key-value table of a
// local SQLite file.
type SQLiteMirrorStore struct {
	db *sql.DB
}

func NewSQLiteMirrorStore(path string) (*SQLiteMirrorStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create mirror directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror database: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to mirror database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS mirror (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create mirror table: %w", err)
	}

	return &SQLiteMirrorStore{db: db}, nil
}

func (s *SQLiteMirrorStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM mirror WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load mirror entry: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteMirrorStore) Store(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mirror (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store mirror entry: %w", err)
	}
	return nil
}

func (s *SQLiteMirrorStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM mirror WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete mirror entry: %w", err)
	}
	return nil
}

func (s *SQLiteMirrorStore) Close() error {
	return s.db.Close()
}
