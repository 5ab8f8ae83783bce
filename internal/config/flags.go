package config

import (
	"flag"
	"os"
	"time"

	"github.com/zach2017/oldtownaltour/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-b string   storage backend (memory, sqlite, postgres, s3)
//	-d string   sqlite database file
//	-dsn string postgres connection string
//	-k string   storage key of the catalog document
//	-q int      storage quota in bytes (0 disables)
//	-p int      upload progress step in milliseconds
//	-l string   log level
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-d", "-dsn", "-k", "-q", "-p", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "storage backend: memory, sqlite, postgres or s3")
	fs.StringVar(&cfg.SQLitePath, "d", cfg.SQLitePath, "sqlite database file")
	fs.StringVar(&cfg.PostgresDSN, "dsn", cfg.PostgresDSN, "postgres connection string")
	fs.StringVar(&cfg.StorageKey, "k", cfg.StorageKey, "storage key of the catalog")
	fs.Int64Var(&cfg.QuotaBytes, "q", cfg.QuotaBytes, "storage quota in bytes (0 disables)")
	progressStep := fs.Int("p", int(cfg.ProgressStep.Milliseconds()), "upload progress step (in milliseconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ProgressStep = time.Duration(*progressStep) * time.Millisecond
}
