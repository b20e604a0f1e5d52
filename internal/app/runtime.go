// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package app assembles the query side shared by the HTTP server and the
// interactive CLI: snapshot, catalog, metadata enrichment and the
// recommendation service.
package app

import (
	"fmt"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/snapshot"
	"github.com/tomtom215/reelmatch/internal/tmdb"
)

// Runtime is a ready-to-query recommendation stack.
type Runtime struct {
	Service *recommend.Service

	// Enricher and Breaker are nil when no TMDB key is configured.
	Enricher *tmdb.Enricher
	Breaker  *tmdb.CircuitBreakerClient

	// Disk is nil unless a cache directory is configured.
	Disk *tmdb.BadgerCache
}

// NewRuntime loads the snapshot from cfg.Snapshot.Dir and wires enrichment
// when cfg.TMDB has an API key. The caller must Close the result.
func NewRuntime(cfg *config.Config) (*Runtime, error) {
	snap, err := snapshot.Read(cfg.Snapshot.Dir)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	catalog, err := recommend.NewCatalog(snap)
	if err != nil {
		return nil, err
	}
	metrics.SnapshotMovies.Set(float64(catalog.Len()))

	m := snap.Manifest
	logging.Info().
		Str("dir", cfg.Snapshot.Dir).
		Time("built_at", m.BuiltAt).
		Int("movies", m.Movies).
		Int("vocabulary", m.VocabularySize).
		Int("rows_dropped", m.Merge.Dropped()).
		Interface("degraded_fields", m.DegradedFields).
		Msg("Snapshot loaded")

	rt := &Runtime{}
	var enricher recommend.Enricher = recommend.NoEnrichment{}

	if cfg.TMDB.Enabled() {
		if cfg.TMDB.CacheDir != "" {
			rt.Disk, err = tmdb.OpenBadgerCache(cfg.TMDB.CacheDir, cfg.TMDB.CacheTTL)
			if err != nil {
				return nil, err
			}
		}
		rt.Breaker = tmdb.NewCircuitBreakerClient(tmdb.NewClient(cfg.TMDB), cfg.TMDB)
		rt.Enricher = tmdb.NewEnricher(rt.Breaker, tmdb.EnricherOptions{
			ImageBaseURL: cfg.TMDB.ImageBaseURL,
			CacheSize:    cfg.TMDB.CacheSize,
			CacheTTL:     cfg.TMDB.CacheTTL,
			Disk:         rt.Disk,
		})
		enricher = rt.Enricher
		logging.Info().
			Str("base_url", cfg.TMDB.BaseURL).
			Bool("disk_cache", rt.Disk != nil).
			Msg("TMDB enrichment enabled")
	} else {
		logging.Warn().Msg("TMDB_API_KEY not set, recommendations will use placeholder metadata")
	}

	rt.Service = recommend.NewService(catalog, enricher, recommend.Options{
		TopK:            cfg.Query.TopK,
		SuggestionLimit: cfg.Query.SuggestionLimit,
		DefaultLanguage: cfg.Query.DefaultLanguage,
	})
	return rt, nil
}

// Close releases the disk cache.
func (rt *Runtime) Close() error {
	if rt.Disk == nil {
		return nil
	}
	return rt.Disk.Close()
}
