package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the per-profile journal.db, a local audit trail of what reached
// the spreadsheet and Drive.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the journal at path. The daemon is the only
// writer, so one connection serializes access without SQLITE_BUSY retries.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("journal dir: %w", err)
	}
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal %s: %w", path, err)
	}
	return &DB{DB: db, path: path}, nil
}

// Path returns the file the journal was opened from.
func (db *DB) Path() string {
	return db.path
}

func dsn(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", "5000")
	q.Set("_foreign_keys", "on")
	return path + "?" + q.Encode()
}
