// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/similarity"
	"github.com/tomtom215/reelmatch/internal/snapshot"
)

type stubEnricher struct{}

func (stubEnricher) Enrich(_ context.Context, title, _ string) (models.Enrichment, error) {
	return models.Enrichment{
		PosterURL:   "https://image.example/" + url.PathEscape(title),
		ReleaseYear: "2012",
		Rating:      "7.8",
		Overview:    "about " + title,
	}, nil
}

func testService(t *testing.T) *recommend.Service {
	t.Helper()
	m, err := similarity.NewMatrix(4, []float32{
		1.0, 0.2, 0.6, 0.1,
		0.2, 1.0, 0.3, 0.0,
		0.6, 0.3, 1.0, 0.1,
		0.1, 0.0, 0.1, 1.0,
	})
	if err != nil {
		t.Fatal(err)
	}
	catalog, err := recommend.NewCatalog(&snapshot.Snapshot{
		Manifest: snapshot.Manifest{BuiltAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)},
		Movies: []models.Movie{
			{ID: 206647, Title: "Spectre", Tags: "spy action danielcraig"},
			{ID: 19995, Title: "Avatar", Tags: "sciencefiction action"},
			{ID: 37724, Title: "Skyfall", Tags: "spy action danielcraig"},
			{ID: 194, Title: "Amelie", Tags: "romance comedy paris"},
		},
		Matrix: m,
	})
	if err != nil {
		t.Fatal(err)
	}
	return recommend.NewService(catalog, stubEnricher{}, recommend.Options{SuggestionLimit: 3})
}

func newTestServer(t *testing.T, opts HandlerOptions, mw *ChiMiddlewareConfig) http.Handler {
	t.Helper()
	return NewRouter(NewHandler(testService(t), opts), mw).SetupChi()
}

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func doGet(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v (body %q)", target, err, rec.Body.String())
	}
	return rec, env
}

func TestRecommendations_Match(t *testing.T) {
	h := newTestServer(t, HandlerOptions{}, nil)

	rec, env := doGet(t, h, "/api/v1/recommendations?title=spectre&k=2&lang=fr")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if env.Status != "success" {
		t.Errorf("status field = %q", env.Status)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	var result models.RecommendationResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Outcome != models.OutcomeMatch || result.Match == nil || result.Match.Title != "Spectre" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Language != "fr" {
		t.Errorf("language = %q", result.Language)
	}
	if len(result.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(result.Recommendations))
	}
	if got := result.Recommendations[0]; got.Title != "Skyfall" || got.Rank != 1 || !got.Enriched {
		t.Errorf("top recommendation = %+v", got)
	}
	if got := result.Recommendations[1].Title; got != "Avatar" {
		t.Errorf("second recommendation = %q, want Avatar", got)
	}
}

func TestRecommendations_NoMatch(t *testing.T) {
	h := newTestServer(t, HandlerOptions{}, nil)

	tests := []struct {
		name            string
		query           string
		wantSuggestions []string
		wantFiltered    bool
	}{
		{"unknown with suggestions", "title=sky", []string{"Skyfall"}, false},
		{"unknown without suggestions", "title=zzz", nil, false},
		{"excluded by genre", "title=Amelie&genre=action", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doGet(t, h, "/api/v1/recommendations?"+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var result models.RecommendationResult
			if err := json.Unmarshal(env.Data, &result); err != nil {
				t.Fatal(err)
			}
			if result.Outcome != models.OutcomeNoMatch {
				t.Errorf("outcome = %q", result.Outcome)
			}
			if len(result.Recommendations) != 0 {
				t.Errorf("recommendations = %v", result.Recommendations)
			}
			if strings.Join(result.Suggestions, ",") != strings.Join(tt.wantSuggestions, ",") {
				t.Errorf("suggestions = %v, want %v", result.Suggestions, tt.wantSuggestions)
			}
			if result.FilteredOut != tt.wantFiltered {
				t.Errorf("filtered_out = %v, want %v", result.FilteredOut, tt.wantFiltered)
			}
		})
	}
}

func TestRecommendations_GenreFilterMatch(t *testing.T) {
	h := newTestServer(t, HandlerOptions{}, nil)

	_, env := doGet(t, h, "/api/v1/recommendations?title=Avatar&genre=Science%20Fiction")
	var result models.RecommendationResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Outcome != models.OutcomeMatch {
		t.Errorf("outcome = %q, want match", result.Outcome)
	}
}

func TestRecommendations_Validation(t *testing.T) {
	h := newTestServer(t, HandlerOptions{}, nil)

	tests := []struct {
		name  string
		query string
	}{
		{"missing title", ""},
		{"blank title", "title=%20%20"},
		{"unsupported language", "title=Avatar&lang=xx"},
		{"k too large", "title=Avatar&k=500"},
		{"k above ten", "title=Avatar&k=11"},
		{"k not a number", "title=Avatar&k=ten"},
		{"negative k", "title=Avatar&k=-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doGet(t, h, "/api/v1/recommendations?"+tt.query)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v", env.Error)
			}
		})
	}
}

func TestSuggestions(t *testing.T) {
	h := newTestServer(t, HandlerOptions{}, nil)

	rec, env := doGet(t, h, "/api/v1/suggestions?q=A")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var data struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(data.Suggestions, ","); got != "Avatar,Skyfall,Amelie" {
		t.Errorf("suggestions = %q", got)
	}

	rec, _ = doGet(t, h, "/api/v1/suggestions")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d, want 400", rec.Code)
	}
}

func TestMovie(t *testing.T) {
	h := newTestServer(t, HandlerOptions{}, nil)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"found", "/api/v1/movies/19995", http.StatusOK},
		{"not found", "/api/v1/movies/1", http.StatusNotFound},
		{"bad id", "/api/v1/movies/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doGet(t, h, tt.path)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var m models.Movie
			if err := json.Unmarshal(env.Data, &m); err != nil {
				t.Fatal(err)
			}
			if m.Title != "Avatar" {
				t.Errorf("title = %q", m.Title)
			}
		})
	}
}

func TestSelectors(t *testing.T) {
	h := newTestServer(t, HandlerOptions{}, nil)

	_, env := doGet(t, h, "/api/v1/languages")
	var langs []models.Language
	if err := json.Unmarshal(env.Data, &langs); err != nil {
		t.Fatal(err)
	}
	if len(langs) != len(models.Languages) {
		t.Errorf("got %d languages", len(langs))
	}

	_, env = doGet(t, h, "/api/v1/genres")
	var genres []string
	if err := json.Unmarshal(env.Data, &genres); err != nil {
		t.Fatal(err)
	}
	if len(genres) != len(models.Genres) {
		t.Errorf("got %d genres", len(genres))
	}
}

func TestHealth(t *testing.T) {
	state := "closed"
	h := newTestServer(t, HandlerOptions{
		EnrichmentEnabled: true,
		BreakerState:      func() string { return state },
	}, nil)

	_, env := doGet(t, h, "/api/v1/health")
	var health models.HealthStatus
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "healthy" || health.Movies != 4 || health.Enrichment != "enabled" {
		t.Errorf("health = %+v", health)
	}
	if !health.SnapshotBuilt.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("snapshot_built_at = %v", health.SnapshotBuilt)
	}

	state = "open"
	_, env = doGet(t, h, "/api/v1/health")
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "degraded" {
		t.Errorf("status with open breaker = %q, want degraded", health.Status)
	}

	rec, _ := doGet(t, h, "/api/v1/health/live")
	if rec.Code != http.StatusOK {
		t.Errorf("live status = %d", rec.Code)
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	h := newTestServer(t, HandlerOptions{}, nil)

	rec, env := doGet(t, h, "/api/v1/nope")
	if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("unknown route: %d %+v", rec.Code, env.Error)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/genres", http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, HandlerOptions{}, ChiMiddlewareConfigFromServer(config.ServerConfig{
		RateLimit:       2,
		RateLimitWindow: time.Minute,
	}))

	for i := 0; i < 2; i++ {
		if rec, _ := doGet(t, h, "/api/v1/genres"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	rec, env := doGet(t, h, "/api/v1/genres")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "RATE_LIMITED" {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestChiMiddlewareConfigFromServer(t *testing.T) {
	c := ChiMiddlewareConfigFromServer(config.ServerConfig{CORSOrigins: []string{"https://a.example"}})
	if !c.RateLimitDisabled {
		t.Error("zero rate limit should disable limiting")
	}
	if len(c.CORSAllowedOrigins) != 1 || c.CORSAllowedOrigins[0] != "https://a.example" {
		t.Errorf("origins = %v", c.CORSAllowedOrigins)
	}
	if c.RateLimitWindow != time.Minute {
		t.Errorf("window = %v", c.RateLimitWindow)
	}
}

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	h := newTestServer(t, HandlerOptions{}, nil)
	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/movies/{id}", "200")
	before := testutil.ToFloat64(counter)

	doGet(t, h, "/api/v1/movies/194")

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("counter moved by %v, want 1", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, HandlerOptions{}, ChiMiddlewareConfigFromServer(config.ServerConfig{
		CORSOrigins: []string{"https://app.example"},
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/genres", http.NoBody)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestGenerateETag(t *testing.T) {
	a := generateETag([]byte(`{"a":1}`))
	if a != generateETag([]byte(`{"a":1}`)) {
		t.Error("ETag not deterministic")
	}
	if a == generateETag([]byte(`{"a":2}`)) {
		t.Error("different bodies share an ETag")
	}
}

func TestSanitizeLogValue(t *testing.T) {
	if got := sanitizeLogValue("a\nb\tc"); got != `a\x0ab\x09c` {
		t.Errorf("sanitizeLogValue = %q", got)
	}
}
