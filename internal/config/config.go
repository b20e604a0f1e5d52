// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package config loads Reelmatch configuration from built-in defaults, an
// optional YAML file and environment variables (highest priority) using koanf.
package config

import (
	"time"
)

// Config is the root configuration shared by cmd/builder, cmd/server and
// cmd/recommend. Each binary only reads the sections it needs.
type Config struct {
	Data     DataConfig     `koanf:"data"`
	Builder  BuilderConfig  `koanf:"builder"`
	Snapshot SnapshotConfig `koanf:"snapshot"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Query    QueryConfig    `koanf:"query"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DataConfig locates the two raw input tables.
type DataConfig struct {
	MoviesPath  string `koanf:"movies_path" validate:"required"`
	CreditsPath string `koanf:"credits_path" validate:"required"`

	// Loader selects the table reader: "duckdb" runs the join in DuckDB,
	// "csv" streams both files with encoding/csv and joins in memory.
	Loader string `koanf:"loader" validate:"oneof=duckdb csv"`
}

// BuilderConfig tunes the feature and similarity pipeline.
type BuilderConfig struct {
	MaxVocabulary  int      `koanf:"max_vocabulary" validate:"min=1,max=1000000"`
	ExtraStopwords []string `koanf:"extra_stopwords"`
	CastLimit      int      `koanf:"cast_limit" validate:"min=1,max=50"`
}

// SnapshotConfig locates the persisted movie table and similarity matrix.
type SnapshotConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

// TMDBConfig configures the metadata service client.
type TMDBConfig struct {
	APIKey       string        `koanf:"api_key"`
	BaseURL      string        `koanf:"base_url" validate:"required,url"`
	ImageBaseURL string        `koanf:"image_base_url" validate:"required,url"`
	Timeout      time.Duration `koanf:"timeout"`

	// RequestsPerSecond paces outgoing calls; Burst bounds short spikes.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gt=0"`
	Burst             int     `koanf:"burst" validate:"min=1"`
	MaxRetries        int     `koanf:"max_retries" validate:"min=0,max=10"`

	// Circuit breaker thresholds.
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests" validate:"min=1"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio" validate:"gt=0,lte=1"`
	BreakerOpenTimeout  time.Duration `koanf:"breaker_open_timeout"`

	// Enrichment cache. CacheDir empty disables the on-disk badger layer.
	CacheDir  string        `koanf:"cache_dir"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
	CacheSize int           `koanf:"cache_size" validate:"min=0"`
}

// Enabled reports whether an API key is configured. Without one every
// recommendation is returned with placeholder enrichment.
func (c TMDBConfig) Enabled() bool {
	return c.APIKey != ""
}

// QueryConfig holds shell defaults.
type QueryConfig struct {
	TopK            int    `koanf:"top_k" validate:"min=1,max=10"`
	SuggestionLimit int    `koanf:"suggestion_limit" validate:"min=0,max=50"`
	DefaultLanguage string `koanf:"default_language" validate:"required"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"min=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}
