// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package main runs the offline feature and similarity build.
//
// It reads the movies and credits tables, joins them on title, builds one
// tag document per movie, vectorizes the documents and writes the movie
// table plus the cosine similarity matrix to the snapshot directory.
//
// # Configuration
//
// Settings come from Koanf v2 (environment > config.yaml > defaults):
//
//	MOVIES_CSV=data/tmdb_5000_movies.csv
//	CREDITS_CSV=data/tmdb_5000_credits.csv
//	DATA_LOADER=duckdb          # or csv
//	SNAPSHOT_DIR=snapshot
//	MAX_VOCABULARY=5000
//
// # Exit Codes
//
// 0 on success, 1 on any failure. A failed build never replaces the movie
// table, and the server refuses a movie table paired with another build's
// matrix.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/reelmatch/internal/builder"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/ingest"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/vectorize"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var source ingest.Source
	switch cfg.Data.Loader {
	case "csv":
		source = ingest.NewCSVSource(cfg.Data.MoviesPath, cfg.Data.CreditsPath)
	default:
		source = ingest.NewDuckDBSource(cfg.Data.MoviesPath, cfg.Data.CreditsPath)
	}

	logging.Info().
		Str("movies", cfg.Data.MoviesPath).
		Str("credits", cfg.Data.CreditsPath).
		Str("loader", cfg.Data.Loader).
		Str("snapshot_dir", cfg.Snapshot.Dir).
		Msg("Starting build")

	b := builder.New(source, builder.Options{
		MaxVocabulary: cfg.Builder.MaxVocabulary,
		CastLimit:     cfg.Builder.CastLimit,
		Stopwords:     vectorize.EnglishStopwords(cfg.Builder.ExtraStopwords...),
		SnapshotDir:   cfg.Snapshot.Dir,
	})

	snap, err := b.Run(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Build failed")
		stop()
		os.Exit(1)
	}

	logging.Info().
		Int("movies", snap.Manifest.Movies).
		Int("vocabulary", snap.Manifest.VocabularySize).
		Str("snapshot_dir", cfg.Snapshot.Dir).
		Msg("Build complete")
}
