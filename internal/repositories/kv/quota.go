package kv

import (
	"context"
	"fmt"

	"github.com/zach2017/oldtownaltour/internal/common"
)

// QuotaRepository rejects writes whose key plus value exceed Limit bytes.
// It gives media without a native size limit (memory, S3) the quota
// behaviour of browser local storage.
type QuotaRepository struct {
	Repository
	Limit int64
}

func NewQuotaRepository(inner Repository, limit int64) *QuotaRepository {
	return &QuotaRepository{Repository: inner, Limit: limit}
}

func (r *QuotaRepository) Set(ctx context.Context, key string, value []byte) error {
	need := int64(len(key) + len(value))
	if r.Limit > 0 && need > r.Limit {
		return fmt.Errorf("set %s: %w (%d > %d bytes)", key, common.ErrQuotaExceeded, need, r.Limit)
	}
	return r.Repository.Set(ctx, key, value)
}
