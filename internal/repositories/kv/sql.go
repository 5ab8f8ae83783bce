package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/zach2017/oldtownaltour/internal/common"
	"github.com/zach2017/oldtownaltour/internal/dbx"
	"github.com/zach2017/oldtownaltour/internal/migrations"
)

// sqlQueries holds the dialect-specific statements of a kv_store table.
type sqlQueries struct {
	get    string
	upsert string
	delete string
	// usage sums the bytes held by every key other than the one being written.
	usage string
}

// sqlRepository stores values in the kv_store table. With a positive quota
// the size check and the write share one transaction, so the quota covers
// the whole table the way a browser origin quota covers all its keys.
type sqlRepository struct {
	db    *sql.DB
	q     sqlQueries
	quota int64
}

func (r *sqlRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, r.q.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, nil
}

func (r *sqlRepository) Set(ctx context.Context, key string, value []byte) error {
	if r.quota <= 0 {
		return r.upsert(ctx, r.db, key, value)
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var used int64
		if err := tx.QueryRowContext(ctx, r.q.usage, key).Scan(&used); err != nil {
			return fmt.Errorf("failed to measure kv usage: %w", err)
		}

		need := used + int64(len(key)+len(value))
		if need > r.quota {
			return fmt.Errorf("set kv[%s]: %w (%d > %d bytes)", key, common.ErrQuotaExceeded, need, r.quota)
		}

		return r.upsert(ctx, tx, key, value)
	})
}

func (r *sqlRepository) upsert(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	if _, err := db.ExecContext(ctx, r.q.upsert, key, value); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (r *sqlRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.q.delete, key); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// runMigrations applies the embedded migrations found in dir using the
// given goose dialect.
func runMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect %s: %w", dialect, err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("run %s migrations: %w", dir, err)
	}
	return nil
}
