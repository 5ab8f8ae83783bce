package kv

import (
	"context"
	"fmt"

	"github.com/zach2017/oldtownaltour/internal/common"
)

// Backend names accepted by Open. They double as the provider reported by
// the catalog health check.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Options selects and configures a medium.
type Options struct {
	Backend     string
	SQLitePath  string
	PostgresDSN string
	S3          S3Options
	// QuotaBytes caps the stored size; <= 0 means unlimited.
	QuotaBytes int64
}

// Backend is an opened medium.
type Backend struct {
	Repository
	Provider string
	close    func() error
}

// Close releases the underlying connection, if any.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to the medium named by o.Backend.
func Open(ctx context.Context, o Options) (*Backend, error) {
	switch o.Backend {
	case BackendMemory:
		return &Backend{Repository: withQuota(NewMemoryRepository(), o.QuotaBytes), Provider: BackendMemory}, nil

	case BackendSQLite:
		repo, db, err := OpenSQLite(ctx, o.SQLitePath, o.QuotaBytes)
		if err != nil {
			return nil, err
		}
		return &Backend{Repository: repo, Provider: BackendSQLite, close: db.Close}, nil

	case BackendPostgres:
		repo, db, err := OpenPostgres(ctx, o.PostgresDSN, o.QuotaBytes)
		if err != nil {
			return nil, err
		}
		return &Backend{Repository: repo, Provider: BackendPostgres, close: db.Close}, nil

	case BackendS3:
		client, err := NewS3Client(ctx, o.S3)
		if err != nil {
			return nil, err
		}
		repo := NewS3Repository(client, o.S3.Bucket, o.S3.Prefix)
		return &Backend{Repository: withQuota(repo, o.QuotaBytes), Provider: BackendS3}, nil

	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownBackend, o.Backend)
	}
}

func withQuota(r Repository, limit int64) Repository {
	if limit <= 0 {
		return r
	}
	return NewQuotaRepository(r, limit)
}
