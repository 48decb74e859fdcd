// Package config loads runtime settings from ECONFEED_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "econfeed"

type Config struct {
	// DATABASE_URL is a pgx connection string. Empty disables the
	// relational store; snapshots still work.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	FREDAPIKey         string `envconfig:"FRED_API_KEY"`
	BLSAPIKey          string `envconfig:"BLS_API_KEY"`
	BEAAPIKey          string `envconfig:"BEA_API_KEY"`
	AlphaVantageAPIKey string `envconfig:"ALPHAVANTAGE_API_KEY"`

	UserAgent         string        `envconfig:"USER_AGENT" default:"econfeed/1.0"`
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	Retries           int           `envconfig:"RETRIES" default:"3"`
	RetryBackoff      time.Duration `envconfig:"RETRY_BACKOFF" default:"1s"`
	RequestsPerSecond float64       `envconfig:"REQUESTS_PER_SECOND" default:"2"`

	// SnapshotPath is a local directory or an s3:// URL. Empty disables
	// parquet snapshots.
	SnapshotPath string `envconfig:"SNAPSHOT_PATH"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
