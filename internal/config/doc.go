// Package config loads runtime configuration for the tour catalog CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-b string   storage backend: memory, sqlite, postgres, s3
//	-d string   sqlite database file
//	-dsn string postgres connection string
//	-k string   storage key of the catalog document
//	-q int      storage quota in bytes
//	-p int      upload progress step (milliseconds)
//	-l string   log level
//
// # JSON schema
//
// S3 settings are only read from JSON. Durations accept strings like
// "60ms" or integer nanoseconds:
//
//	{
//	  "backend": "s3",
//	  "storage_key": "oat-tour-locations",
//	  "quota_bytes": 5242880,
//	  "progress_step": "60ms",
//	  "log_level": "debug",
//	  "s3": {
//	    "bucket": "oat-tours",
//	    "region": "us-east-1",
//	    "base_endpoint": "http://127.0.0.1:9000",
//	    "access_key": "minioadmin",
//	    "secret_key": "minioadmin"
//	  }
//	}
package config
