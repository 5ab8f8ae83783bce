package config

import (
	"encoding/json"
	"os"

	"github.com/zach2017/oldtownaltour/internal/flagx"
	"github.com/zach2017/oldtownaltour/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so they can be written as "60ms" or as nanoseconds.
type JsonConfig struct {
	Backend      string          `json:"backend"`
	SQLitePath   string          `json:"sqlite_path"`
	PostgresDSN  string          `json:"postgres_dsn"`
	StorageKey   string          `json:"storage_key"`
	QuotaBytes   *int64          `json:"quota_bytes"`
	ProgressStep *timex.Duration `json:"progress_step"`
	LogLevel     string          `json:"log_level"`
	S3           JsonS3Config    `json:"s3"`
}

type JsonS3Config struct {
	Bucket       string `json:"bucket"`
	Region       string `json:"region"`
	BaseEndpoint string `json:"base_endpoint"`
	AccessKey    string `json:"access_key"`
	SecretKey    string `json:"secret_key"`
	Prefix       string `json:"prefix"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Fields missing from the file keep their current value.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.Backend, jc.Backend)
	setString(&cfg.SQLitePath, jc.SQLitePath)
	setString(&cfg.PostgresDSN, jc.PostgresDSN)
	setString(&cfg.StorageKey, jc.StorageKey)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.QuotaBytes != nil {
		cfg.QuotaBytes = *jc.QuotaBytes
	}
	if jc.ProgressStep != nil {
		cfg.ProgressStep = jc.ProgressStep.Duration
	}

	setString(&cfg.S3.Bucket, jc.S3.Bucket)
	setString(&cfg.S3.Region, jc.S3.Region)
	setString(&cfg.S3.BaseEndpoint, jc.S3.BaseEndpoint)
	setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
	setString(&cfg.S3.Prefix, jc.S3.Prefix)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
