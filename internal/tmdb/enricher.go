// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package tmdb

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/textfold"
)

const (
	posterSize     = "w500"
	youtubeWatch   = "https://www.youtube.com/watch?v="
	defaultImgBase = "https://image.tmdb.org/t/p"
)

// EnricherOptions configures an Enricher.
type EnricherOptions struct {
	ImageBaseURL string
	CacheSize    int
	CacheTTL     time.Duration

	// Disk is an optional persistent layer behind the memory cache.
	Disk *BadgerCache
}

// Enricher looks up display metadata for recommendations. Complete lookups
// are cached per language and folded title; failures are not.
type Enricher struct {
	api       API
	imageBase string
	memory    *cache.LRU[models.Enrichment]
	disk      *BadgerCache
}

// NewEnricher creates an Enricher over api.
func NewEnricher(api API, opts EnricherOptions) *Enricher {
	base := strings.TrimRight(opts.ImageBaseURL, "/")
	if base == "" {
		base = defaultImgBase
	}
	return &Enricher{
		api:       api,
		imageBase: base,
		memory:    cache.NewLRU[models.Enrichment](opts.CacheSize, opts.CacheTTL),
		disk:      opts.Disk,
	}
}

func cacheKey(title, language string) string {
	return language + ":" + textfold.Fold(strings.TrimSpace(title))
}

// Enrich returns metadata for the best search hit of title. A missing
// trailer leaves TrailerURL empty rather than failing. When the videos
// lookup itself fails the result is returned uncached, so a later call
// retries the trailer.
func (e *Enricher) Enrich(ctx context.Context, title, language string) (models.Enrichment, error) {
	key := cacheKey(title, language)

	if v, ok := e.memory.Get(key); ok {
		metrics.CacheHits.WithLabelValues("memory").Inc()
		return v, nil
	}
	metrics.CacheMisses.WithLabelValues("memory").Inc()

	if e.disk != nil {
		v, ok, err := e.disk.Get(key)
		switch {
		case err != nil:
			logging.Warn().Err(err).Str("key", key).Msg("Enrichment disk cache read failed")
		case ok:
			metrics.CacheHits.WithLabelValues("disk").Inc()
			e.memory.Add(key, v)
			return v, nil
		default:
			metrics.CacheMisses.WithLabelValues("disk").Inc()
		}
	}

	hit, err := e.api.SearchMovie(ctx, title, language)
	if err != nil {
		return models.Enrichment{}, err
	}

	info := models.Enrichment{
		PosterURL:   PosterURL(e.imageBase, hit.PosterPath),
		ReleaseYear: ReleaseYear(hit.ReleaseDate),
		Rating:      Rating(hit.VoteAverage),
		Overview:    models.NoOverview,
	}
	if hit.Overview != nil && strings.TrimSpace(*hit.Overview) != "" {
		info.Overview = *hit.Overview
	}

	videos, err := e.api.Videos(ctx, hit.ID)
	if err != nil {
		logging.Debug().Err(err).Int64("tmdb_id", hit.ID).Str("title", title).Msg("Trailer lookup failed")
		return info, nil
	}
	if info.TrailerURL, err = TrailerURL(videos); errors.Is(err, ErrNoTrailer) {
		logging.Debug().Int64("tmdb_id", hit.ID).Str("title", title).Msg("No trailer")
	}

	e.memory.Add(key, info)
	if e.disk != nil {
		if err := e.disk.Set(key, info); err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("Enrichment disk cache write failed")
		}
	}
	return info, nil
}

// PosterURL joins the image base, poster size and path. A missing path
// gives the placeholder image.
func PosterURL(imageBase string, path *string) string {
	if path == nil || strings.TrimSpace(*path) == "" {
		return models.PlaceholderPosterURL
	}
	return strings.TrimRight(imageBase, "/") + "/" + posterSize + "/" + strings.TrimLeft(*path, "/")
}

// ReleaseYear is the first four characters of a release date, or N/A.
func ReleaseYear(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return models.NotAvailable
	}
	if len(date) > 4 {
		return date[:4]
	}
	return date
}

// Rating formats a vote average, or N/A when absent.
func Rating(vote *float64) string {
	if vote == nil {
		return models.NotAvailable
	}
	return strconv.FormatFloat(*vote, 'f', -1, 64)
}

// TrailerURL returns the watch URL of the first YouTube trailer.
func TrailerURL(videos []Video) (string, error) {
	for _, v := range videos {
		if v.Site == "YouTube" && v.Type == "Trailer" && v.Key != "" {
			return youtubeWatch + v.Key, nil
		}
	}
	return "", ErrNoTrailer
}

// CleanupExpired drops expired entries from the memory cache and returns
// how many were removed.
func (e *Enricher) CleanupExpired() int {
	return e.memory.CleanupExpired()
}
