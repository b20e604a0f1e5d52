// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points CONFIG_PATH at a file that does not exist so the test only
// sees defaults and whatever env it sets.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Builder.MaxVocabulary != 5000 {
		t.Errorf("MaxVocabulary = %d, want 5000", cfg.Builder.MaxVocabulary)
	}
	if cfg.Builder.CastLimit != 3 {
		t.Errorf("CastLimit = %d, want 3", cfg.Builder.CastLimit)
	}
	if cfg.Query.TopK != 10 {
		t.Errorf("TopK = %d, want 10", cfg.Query.TopK)
	}
	if cfg.Query.SuggestionLimit != 3 {
		t.Errorf("SuggestionLimit = %d, want 3", cfg.Query.SuggestionLimit)
	}
	if cfg.Data.Loader != "duckdb" {
		t.Errorf("Loader = %q, want duckdb", cfg.Data.Loader)
	}
	if cfg.TMDB.Enabled() {
		t.Error("TMDB should be disabled without an API key")
	}
	if cfg.TMDB.Timeout != 10*time.Second {
		t.Errorf("TMDB.Timeout = %v", cfg.TMDB.Timeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TMDB_API_KEY", "secret")
	t.Setenv("TMDB_TIMEOUT", "3s")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("EXTRA_STOPWORDS", "film,movie")
	t.Setenv("DATA_LOADER", "csv")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.TMDB.Enabled() || cfg.TMDB.APIKey != "secret" {
		t.Errorf("APIKey = %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.TMDB.Timeout)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if len(cfg.Builder.ExtraStopwords) != 2 || cfg.Builder.ExtraStopwords[0] != "film" {
		t.Errorf("ExtraStopwords = %v", cfg.Builder.ExtraStopwords)
	}
	if cfg.Data.Loader != "csv" {
		t.Errorf("Loader = %q, want csv", cfg.Data.Loader)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
snapshot:
  dir: /var/lib/reelmatch
query:
  top_k: 5
  default_language: ja
logging:
  level: debug
  format: console
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Snapshot.Dir != "/var/lib/reelmatch" {
		t.Errorf("Snapshot.Dir = %q", cfg.Snapshot.Dir)
	}
	if cfg.Query.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.Query.TopK)
	}
	if cfg.Query.DefaultLanguage != "ja" {
		t.Errorf("DefaultLanguage = %q", cfg.Query.DefaultLanguage)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env should win over file, got level %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Format = %q", cfg.Logging.Format)
	}
	if cfg.Query.SuggestionLimit != 3 {
		t.Errorf("defaults should survive partial file, SuggestionLimit = %d", cfg.Query.SuggestionLimit)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown loader", mutate: func(c *Config) { c.Data.Loader = "parquet" }, wantErr: true},
		{name: "zero vocabulary", mutate: func(c *Config) { c.Builder.MaxVocabulary = 0 }, wantErr: true},
		{name: "unsupported language", mutate: func(c *Config) { c.Query.DefaultLanguage = "xx" }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
		{name: "bad base url", mutate: func(c *Config) { c.TMDB.BaseURL = "not a url" }, wantErr: true},
		{name: "breaker ratio above one", mutate: func(c *Config) { c.TMDB.BreakerFailureRatio = 1.5 }, wantErr: true},
		{
			name:    "cache dir without ttl",
			mutate:  func(c *Config) { c.TMDB.CacheDir = "/tmp/x"; c.TMDB.CacheTTL = 0 },
			wantErr: true,
		},
		{
			name:    "rate limit without window",
			mutate:  func(c *Config) { c.Server.RateLimitWindow = 0 },
			wantErr: true,
		},
		{name: "top k above ten", mutate: func(c *Config) { c.Query.TopK = 11 }, wantErr: true},
		{name: "rate limit disabled", mutate: func(c *Config) { c.Server.RateLimit = 0; c.Server.RateLimitWindow = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8088}
	if got := s.Addr(); got != "127.0.0.1:8088" {
		t.Errorf("Addr() = %q", got)
	}
}
