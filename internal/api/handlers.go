// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Version is reported by the health endpoint. Overridden at link time.
var Version = "dev"

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// EnrichmentEnabled reports whether a metadata service is configured.
	EnrichmentEnabled bool

	// BreakerState reports the metadata circuit breaker state, if any.
	BreakerState func() string
}

// Handler serves the recommendation API.
type Handler struct {
	svc       *recommend.Service
	opts      HandlerOptions
	startTime time.Time
}

// NewHandler creates a Handler over svc.
func NewHandler(svc *recommend.Service, opts HandlerOptions) *Handler {
	return &Handler{svc: svc, opts: opts, startTime: time.Now()}
}

// RecommendationsRequest is the query string of GET /api/v1/recommendations.
type RecommendationsRequest struct {
	Title    string `query:"title" validate:"required,max=300"`
	Language string `query:"lang" validate:"language"`
	Genre    string `query:"genre" validate:"max=100"`
	Limit    int    `query:"k" validate:"gte=0,lte=10"`
}

// SuggestionsRequest is the query string of GET /api/v1/suggestions.
type SuggestionsRequest struct {
	Query string `query:"q" validate:"required,max=300"`
}

// Recommendations answers a title query with its nearest neighbours.
// An unknown title is a successful response with outcome no_match.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	req := RecommendationsRequest{
		Title:    strings.TrimSpace(q.Get("title")),
		Language: strings.ToLower(strings.TrimSpace(q.Get("lang"))),
		Genre:    strings.TrimSpace(q.Get("genre")),
		Limit:    getIntParam(r, "k", 0),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	ctx := logging.ContextWithNewQueryID(r.Context())
	result, err := h.svc.Recommend(ctx, recommend.Query{
		Title:    req.Title,
		Language: req.Language,
		Genre:    req.Genre,
		Limit:    req.Limit,
	})
	switch {
	case err == nil:
	case errors.Is(err, recommend.ErrEmptyTitle), errors.Is(err, recommend.ErrUnsupportedLanguage):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, "REQUEST_CANCELED", "Request canceled", err)
		return
	default:
		respondError(w, http.StatusInternalServerError, "RECOMMENDATION_FAILED", "Failed to compute recommendations", err)
		return
	}

	respondSuccess(w, result, start)
}

// Suggestions lists stored titles containing q.
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := SuggestionsRequest{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	suggestions := h.svc.Suggest(req.Query)
	if suggestions == nil {
		suggestions = []string{}
	}
	respondSuccess(w, map[string]interface{}{
		"query":       req.Query,
		"suggestions": suggestions,
	}, start)
}

// Movie returns one catalog entry by movie id.
func (h *Handler) Movie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a positive integer", nil)
		return
	}

	movie, ok := h.svc.Catalog().MovieByID(id)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found", nil)
		return
	}
	respondSuccess(w, movie, time.Time{})
}

// Languages lists the supported metadata languages.
func (h *Handler) Languages(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, models.Languages, time.Time{})
}

// Genres lists the genre filter choices.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, models.Genres, time.Time{})
}

// Health reports catalog size, snapshot age and enrichment state. The
// service is degraded while the metadata breaker is open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	catalog := h.svc.Catalog()

	health := models.HealthStatus{
		Status:        "healthy",
		Version:       Version,
		Movies:        catalog.Len(),
		SnapshotBuilt: catalog.Manifest().BuiltAt,
		Enrichment:    "disabled",
		Uptime:        time.Since(h.startTime).Seconds(),
	}
	if h.opts.EnrichmentEnabled {
		health.Enrichment = "enabled"
	}
	if h.opts.BreakerState != nil {
		health.BreakerState = h.opts.BreakerState()
		if health.BreakerState == "open" {
			health.Status = "degraded"
		}
	}

	respondSuccess(w, health, time.Time{})
}

// HealthLive reports that the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Time{})
}
