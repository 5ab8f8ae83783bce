package kv

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/zach2017/oldtownaltour/internal/migrations"
)

var postgresQueries = sqlQueries{
	get: `SELECT value FROM kv_store WHERE key = $1`,
	upsert: `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`,
	delete: `DELETE FROM kv_store WHERE key = $1`,
	usage:  `SELECT COALESCE(SUM(octet_length(key) + octet_length(value)), 0) FROM kv_store WHERE key <> $1`,
}

// PostgresRepository stores values in a shared PostgreSQL database.
type PostgresRepository struct {
	sqlRepository
}

// NewPostgresRepository binds a repository to an open database whose schema
// is already migrated. quota <= 0 disables the size check.
func NewPostgresRepository(db *sql.DB, quota int64) *PostgresRepository {
	return &PostgresRepository{sqlRepository{db: db, q: postgresQueries, quota: quota}}
}

// OpenPostgres connects through the pgx stdlib driver, runs the migrations
// and returns the repository and the handle the caller must close.
func OpenPostgres(ctx context.Context, dsn string, quota int64) (*PostgresRepository, *sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := runMigrations(ctx, db, "pgx", migrations.PostgresDir); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return NewPostgresRepository(db, quota), db, nil
}
