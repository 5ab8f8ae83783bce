package kv

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zach2017/oldtownaltour/internal/common"
)

func openSQLite(t *testing.T, quota int64) *SQLiteRepository {
	t.Helper()
	repo, db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"), quota)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repo
}

func TestSQLiteRepository_SetAndGet(t *testing.T) {
	r := openSQLite(t, 0)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "oat-tour-locations", []byte(`[]`)))

	v, err := r.Get(ctx, "oat-tour-locations")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), v)
}

func TestSQLiteRepository_GetAbsentReturnsNilNil(t *testing.T) {
	r := openSQLite(t, 0)

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSQLiteRepository_SetOverwrites(t *testing.T) {
	r := openSQLite(t, 0)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestSQLiteRepository_DeleteIsIdempotent(t *testing.T) {
	r := openSQLite(t, 0)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("x")))
	require.NoError(t, r.Delete(ctx, "k"))
	require.NoError(t, r.Delete(ctx, "k"))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSQLiteRepository_QuotaCoversAllKeys(t *testing.T) {
	r := openSQLite(t, 64)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "other", []byte(strings.Repeat("o", 30))))
	require.NoError(t, r.Set(ctx, "k", []byte(strings.Repeat("a", 20))))

	// 35 bytes held by "other" + 1 + 40 > 64
	err := r.Set(ctx, "k", []byte(strings.Repeat("b", 40)))
	require.ErrorIs(t, err, common.ErrQuotaExceeded)

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 20), string(v), "failed write must leave the old value")

	// Replacing a key does not count its own previous value.
	require.NoError(t, r.Set(ctx, "k", []byte(strings.Repeat("c", 28))))
}

func TestOpenSQLite_InMemory(t *testing.T) {
	repo, db, err := OpenSQLite(context.Background(), ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, repo.Set(context.Background(), "k", []byte("v")))
}
