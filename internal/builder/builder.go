// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package builder runs the offline feature and similarity pipeline:
// load and merge, extract features, vectorize, compute similarity, persist.
package builder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/reelmatch/internal/features"
	"github.com/tomtom215/reelmatch/internal/ingest"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/similarity"
	"github.com/tomtom215/reelmatch/internal/snapshot"
	"github.com/tomtom215/reelmatch/internal/vectorize"
)

// ErrEmptyCorpus is returned when the join leaves no movie to index.
var ErrEmptyCorpus = errors.New("no movies left after merging the input tables")

// Options configures a build.
type Options struct {
	MaxVocabulary int
	CastLimit     int
	Stopwords     vectorize.Stopwords

	// SnapshotDir is where the result is written. Empty skips persistence.
	SnapshotDir string

	// Now stamps the manifest. Defaults to time.Now.
	Now func() time.Time
}

// Builder produces a snapshot from a Source.
type Builder struct {
	source ingest.Source
	opts   Options
}

// New creates a Builder.
func New(source ingest.Source, opts Options) *Builder {
	if opts.MaxVocabulary <= 0 {
		opts.MaxVocabulary = vectorize.DefaultMaxVocabulary
	}
	if opts.CastLimit <= 0 {
		opts.CastLimit = features.DefaultCastLimit
	}
	if opts.Stopwords == nil {
		opts.Stopwords = vectorize.EnglishStopwords()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Builder{source: source, opts: opts}
}

// Run executes every stage and returns the snapshot it built.
func (b *Builder) Run(ctx context.Context) (*snapshot.Snapshot, error) {
	log := logging.WithComponent("builder")
	started := time.Now()

	stage := time.Now()
	rows, mergeStats, err := b.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	metrics.ObserveStage("load", time.Since(stage))
	log.Info().
		Int("joined", mergeStats.Joined).
		Int("dropped", mergeStats.Dropped()).
		Int("unmatched_credits", mergeStats.UnmatchedCredits).
		Msg("Tables merged")
	if len(rows) == 0 {
		return nil, ErrEmptyCorpus
	}

	stage = time.Now()
	movies, docs, degraded := b.extract(rows)
	metrics.ObserveStage("features", time.Since(stage))
	metrics.BuilderCorpusSize.Set(float64(len(movies)))

	stage = time.Now()
	space, vectors, err := vectorize.Fit(ctx, docs, vectorize.Options{
		MaxVocabulary: b.opts.MaxVocabulary,
		Stopwords:     b.opts.Stopwords,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}
	metrics.ObserveStage("vectorize", time.Since(stage))
	metrics.BuilderVocabularySize.Set(float64(space.Size()))
	log.Info().Int("vocabulary", space.Size()).Msg("Vocabulary fitted")

	stage = time.Now()
	matrix, err := similarity.Compute(ctx, vectors)
	if err != nil {
		return nil, fmt.Errorf("similarity: %w", err)
	}
	metrics.ObserveStage("similarity", time.Since(stage))

	snap := &snapshot.Snapshot{
		Manifest: snapshot.Manifest{
			BuiltAt:        b.opts.Now().UTC(),
			Movies:         len(movies),
			VocabularySize: space.Size(),
			MaxVocabulary:  b.opts.MaxVocabulary,
			Merge:          mergeStats,
			DegradedFields: degraded,
		},
		Movies: movies,
		Matrix: matrix,
	}

	if b.opts.SnapshotDir != "" {
		stage = time.Now()
		if err := snapshot.Write(b.opts.SnapshotDir, snap); err != nil {
			return nil, fmt.Errorf("persist: %w", err)
		}
		metrics.ObserveStage("persist", time.Since(stage))
	}

	log.Info().
		Int("movies", len(movies)).
		Int("vocabulary", space.Size()).
		Dur("elapsed", time.Since(started)).
		Msg("Build complete")
	return snap, nil
}

// extract builds the movie table and tag documents. Degraded fields are
// counted per field name; the record is still indexed.
func (b *Builder) extract(rows []ingest.JoinedRow) ([]models.Movie, []string, map[string]int) {
	movies := make([]models.Movie, 0, len(rows))
	docs := make([]string, 0, len(rows))
	degraded := make(map[string]int)

	for _, row := range rows {
		rec, problems := features.BuildRecord(row, b.opts.CastLimit)
		for _, p := range problems {
			degraded[p.Field]++
			metrics.BuilderFieldsDegraded.WithLabelValues(p.Field, p.Reason).Inc()
			logging.Debug().
				Int64("movie_id", rec.ID).
				Str("title", rec.Title).
				Str("field", p.Field).
				Str("reason", p.Reason).
				Msg("Field degraded to empty")
		}

		text := features.BuildTagDocument(rec).Text()
		movies = append(movies, models.Movie{ID: rec.ID, Title: rec.Title, Tags: text})
		docs = append(docs, text)
	}

	if len(degraded) > 0 {
		ev := logging.Warn()
		for field, n := range degraded {
			ev = ev.Int(field, n)
		}
		ev.Msg("Some feature fields could not be parsed")
	}
	return movies, docs, degraded
}
