package config

import (
	"time"

	"github.com/zach2017/oldtownaltour/internal/repositories/kv"
	"github.com/zach2017/oldtownaltour/internal/store"
)

// Config holds runtime settings for the tour catalog CLI.
//
// Fields:
//   - Backend: storage medium, one of memory, sqlite, postgres, s3.
//   - SQLitePath: database file for the sqlite backend.
//   - PostgresDSN: connection string for the postgres backend.
//   - S3: bucket settings for the s3 backend.
//   - StorageKey: key the catalog document is stored under.
//   - QuotaBytes: size limit of the stored catalog; <= 0 disables it.
//   - ProgressStep: pause between simulated upload progress milestones.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Backend      string
	SQLitePath   string
	PostgresDSN  string
	S3           kv.S3Options
	StorageKey   string
	QuotaBytes   int64
	ProgressStep time.Duration
	LogLevel     string
}

// LoadDefaults populates c with sensible defaults. The quota matches the
// usual 5 MiB allowance of browser local storage.
func (c *Config) LoadDefaults() {
	c.Backend = kv.BackendSQLite
	c.SQLitePath = "data/oat-tours.db"
	c.StorageKey = store.DefaultKey
	c.QuotaBytes = 5 * 1024 * 1024
	c.ProgressStep = 60 * time.Millisecond
	c.LogLevel = "info"
	c.S3.Region = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// StorageOptions translates the storage settings for kv.Open.
func (c *Config) StorageOptions() kv.Options {
	return kv.Options{
		Backend:     c.Backend,
		SQLitePath:  c.SQLitePath,
		PostgresDSN: c.PostgresDSN,
		S3:          c.S3,
		QuotaBytes:  c.QuotaBytes,
	}
}
