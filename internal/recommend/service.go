// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
)

var (
	// ErrEmptyTitle is returned for a blank title.
	ErrEmptyTitle = errors.New("title is required")

	// ErrUnsupportedLanguage is returned for a language outside models.Languages.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrEnrichmentDisabled is returned by NoEnrichment.
	ErrEnrichmentDisabled = errors.New("metadata enrichment disabled")
)

// Enricher fetches display metadata for a title.
type Enricher interface {
	Enrich(ctx context.Context, title, language string) (models.Enrichment, error)
}

// NoEnrichment is used when no metadata service is configured.
type NoEnrichment struct{}

// Enrich always fails with ErrEnrichmentDisabled.
func (NoEnrichment) Enrich(context.Context, string, string) (models.Enrichment, error) {
	return models.Enrichment{}, ErrEnrichmentDisabled
}

// MaxRecommendations caps the neighbours returned per query. Each one costs
// up to two sequential metadata calls.
const MaxRecommendations = 10

// Query is one recommendation request.
type Query struct {
	Title    string
	Language string // code or display name; empty uses the default
	Genre    string // optional tag filter
	Limit    int    // 0 uses the configured top K; capped at MaxRecommendations
}

// Options configures a Service.
type Options struct {
	TopK            int
	SuggestionLimit int
	DefaultLanguage string
}

// Service answers recommendation queries.
type Service struct {
	catalog  *Catalog
	enricher Enricher
	opts     Options
}

// NewService creates a Service. A nil enricher disables enrichment.
func NewService(catalog *Catalog, enricher Enricher, opts Options) *Service {
	if enricher == nil {
		enricher = NoEnrichment{}
	}
	if opts.TopK <= 0 || opts.TopK > MaxRecommendations {
		opts.TopK = MaxRecommendations
	}
	if opts.SuggestionLimit < 0 {
		opts.SuggestionLimit = 0
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = models.DefaultLanguage
	}
	return &Service{catalog: catalog, enricher: enricher, opts: opts}
}

// Catalog returns the catalog the service queries.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Suggest returns stored titles containing query, up to the configured limit.
func (s *Service) Suggest(query string) []string {
	return s.catalog.Suggest(query, s.opts.SuggestionLimit)
}

// Recommend resolves q.Title and returns its nearest neighbours, each
// enriched in rank order. An unknown title is not an error: the result has
// outcome no_match and, when the title matches nothing exactly, suggestions.
// Enrichment failures degrade only the affected recommendation.
func (s *Service) Recommend(ctx context.Context, q Query) (*models.RecommendationResult, error) {
	start := time.Now()
	defer func() { metrics.RecommendationDuration.Observe(time.Since(start).Seconds()) }()

	title := strings.TrimSpace(q.Title)
	if title == "" {
		metrics.RecommendationRequests.WithLabelValues("error").Inc()
		return nil, ErrEmptyTitle
	}

	lang := s.opts.DefaultLanguage
	if q.Language != "" {
		code, ok := models.LanguageCode(q.Language)
		if !ok {
			metrics.RecommendationRequests.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, q.Language)
		}
		lang = code
	}

	limit := q.Limit
	if limit <= 0 {
		limit = s.opts.TopK
	}
	if limit > MaxRecommendations {
		limit = MaxRecommendations
	}

	genre := strings.TrimSpace(q.Genre)
	result := &models.RecommendationResult{
		Query:           title,
		Language:        lang,
		Genre:           genre,
		Recommendations: []models.Recommendation{},
	}
	log := logging.Ctx(ctx).With().Str("title", title).Str("genre", genre).Logger()

	idx, ok := s.catalog.Lookup(title, genre)
	if !ok {
		result.Outcome = models.OutcomeNoMatch
		if s.catalog.HasTitle(title) {
			result.FilteredOut = true
		} else {
			result.Suggestions = s.Suggest(title)
		}
		metrics.RecommendationRequests.WithLabelValues(models.OutcomeNoMatch).Inc()
		log.Info().
			Bool("filtered_out", result.FilteredOut).
			Int("suggestions", len(result.Suggestions)).
			Msg("No matching title")
		return result, nil
	}

	match := s.catalog.Movie(idx)
	result.Outcome = models.OutcomeMatch
	result.Match = &match

	for rank, nb := range s.catalog.Neighbours(idx, limit) {
		if err := ctx.Err(); err != nil {
			metrics.RecommendationRequests.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("recommend %q: %w", title, err)
		}
		movie := s.catalog.Movie(nb.Index)
		result.Recommendations = append(result.Recommendations, models.Recommendation{
			Rank:    rank + 1,
			MovieID: movie.ID,
			Title:   movie.Title,
			Score:   nb.Score,
		})
		s.enrich(ctx, &result.Recommendations[rank], lang)
	}

	metrics.RecommendationRequests.WithLabelValues(models.OutcomeMatch).Inc()
	log.Info().
		Int64("movie_id", match.ID).
		Int("recommendations", len(result.Recommendations)).
		Dur("elapsed", time.Since(start)).
		Msg("Recommendations served")
	return result, nil
}

func (s *Service) enrich(ctx context.Context, rec *models.Recommendation, lang string) {
	info, err := s.enricher.Enrich(ctx, rec.Title, lang)
	if err != nil {
		rec.Enrichment = models.PlaceholderEnrichment()
		metrics.EnrichmentResults.WithLabelValues("degraded").Inc()
		if errors.Is(err, ErrEnrichmentDisabled) {
			return
		}
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("title", rec.Title).
			Str("language", lang).
			Msg("Enrichment failed, using placeholder")
		return
	}
	rec.Enrichment = info
	rec.Enriched = true
	metrics.EnrichmentResults.WithLabelValues("enriched").Inc()
}
