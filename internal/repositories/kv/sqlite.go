package kv

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zach2017/oldtownaltour/internal/filex"
	"github.com/zach2017/oldtownaltour/internal/migrations"
)

var sqliteQueries = sqlQueries{
	get: `SELECT value FROM kv_store WHERE key = ?`,
	upsert: `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`,
	delete: `DELETE FROM kv_store WHERE key = ?`,
	usage:  `SELECT COALESCE(SUM(LENGTH(CAST(key AS BLOB)) + LENGTH(value)), 0) FROM kv_store WHERE key <> ?`,
}

// SQLiteRepository stores values in a local SQLite database.
type SQLiteRepository struct {
	sqlRepository
}

// NewSQLiteRepository binds a repository to an open database whose schema
// is already migrated. quota <= 0 disables the size check.
func NewSQLiteRepository(db *sql.DB, quota int64) *SQLiteRepository {
	return &SQLiteRepository{sqlRepository{db: db, q: sqliteQueries, quota: quota}}
}

// OpenSQLite opens (creating if needed) the database file at path, runs the
// migrations and returns the repository together with the database handle
// the caller must close. path may be ":memory:".
func OpenSQLite(ctx context.Context, path string, quota int64) (*SQLiteRepository, *sql.DB, error) {
	if path != ":memory:" {
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := runMigrations(ctx, db, "sqlite3", migrations.SQLiteDir); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return NewSQLiteRepository(db, quota), db, nil
}
