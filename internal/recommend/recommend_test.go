// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/similarity"
	"github.com/tomtom215/reelmatch/internal/snapshot"
)

// Five movies. Avatar's nearest neighbour is Avatar Twin; Spectre and Skyfall
// tie with Avatar at 0.5 and must keep corpus order.
func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	m, err := similarity.NewMatrix(5, []float32{
		1.0, 0.9, 0.5, 0.5, 0.1,
		0.9, 1.0, 0.4, 0.4, 0.1,
		0.5, 0.4, 1.0, 0.8, 0.0,
		0.5, 0.4, 0.8, 1.0, 0.0,
		0.1, 0.1, 0.0, 0.0, 1.0,
	})
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewCatalog(&snapshot.Snapshot{
		Movies: []models.Movie{
			{ID: 1, Title: "Avatar", Tags: "marine alien sciencefiction action"},
			{ID: 2, Title: "Avatar Twin", Tags: "marine alien sciencefiction"},
			{ID: 3, Title: "Spectre", Tags: "spy action"},
			{ID: 4, Title: "Skyfall", Tags: "spy action"},
			{ID: 5, Title: "Amelie", Tags: "paris romance"},
		},
		Matrix: m,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

type fakeEnricher struct {
	fail  map[string]bool
	calls []string
}

func (f *fakeEnricher) Enrich(_ context.Context, title, lang string) (models.Enrichment, error) {
	f.calls = append(f.calls, lang+":"+title)
	if f.fail[title] {
		return models.Enrichment{}, errors.New("service unavailable")
	}
	return models.Enrichment{
		PosterURL:   "https://image.example/" + title,
		ReleaseYear: "2009",
		Rating:      "7.2",
		Overview:    "about " + title,
	}, nil
}

func titles(recs []models.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestNewCatalog_Mismatch(t *testing.T) {
	m, _ := similarity.NewMatrix(1, []float32{1})
	_, err := NewCatalog(&snapshot.Snapshot{Matrix: m})
	if !errors.Is(err, snapshot.ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name   string
		title  string
		genre  string
		want   int
		wantOK bool
	}{
		{name: "exact", title: "Spectre", want: 2, wantOK: true},
		{name: "case insensitive", title: "aVaTaR", want: 0, wantOK: true},
		{name: "substring is not a match", title: "Avat", wantOK: false},
		{name: "genre keeps title", title: "Avatar", genre: "Action", want: 0, wantOK: true},
		{name: "genre excludes title", title: "Amelie", genre: "action", wantOK: false},
		{name: "genre matches tag substring", title: "Avatar Twin", genre: "fiction", want: 1, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Lookup(tt.title, tt.genre)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("Lookup(%q, %q) = %d, %v; want %d, %v", tt.title, tt.genre, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCatalog_Neighbours(t *testing.T) {
	c := testCatalog(t)

	got := c.Neighbours(0, 10)
	want := []Neighbour{{1, 0.9}, {2, 0.5}, {3, 0.5}, {4, 0.1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbours(0) = %v, want %v", got, want)
	}

	if got := c.Neighbours(0, 2); len(got) != 2 {
		t.Errorf("k=2 returned %d", len(got))
	}
	for _, nb := range c.Neighbours(3, 10) {
		if nb.Index == 3 {
			t.Error("query movie must be excluded")
		}
	}
}

func TestCatalog_Suggest(t *testing.T) {
	c := testCatalog(t)

	if got := c.Suggest("AVA", 3); !reflect.DeepEqual(got, []string{"Avatar", "Avatar Twin"}) {
		t.Errorf("Suggest = %v", got)
	}
	if got := c.Suggest("a", 3); len(got) != 3 {
		t.Errorf("limit not applied: %v", got)
	}
	if got := c.Suggest("  ", 3); got != nil {
		t.Errorf("blank query = %v", got)
	}
}

func TestCatalog_MovieByID(t *testing.T) {
	c := testCatalog(t)
	if m, ok := c.MovieByID(4); !ok || m.Title != "Skyfall" {
		t.Errorf("MovieByID(4) = %+v, %v", m, ok)
	}
	if _, ok := c.MovieByID(99); ok {
		t.Error("unexpected movie")
	}
}

func TestService_Recommend(t *testing.T) {
	enricher := &fakeEnricher{fail: map[string]bool{"Spectre": true}}
	svc := NewService(testCatalog(t), enricher, Options{SuggestionLimit: 3})
	degradedBefore := testutil.ToFloat64(metrics.EnrichmentResults.WithLabelValues("degraded"))

	res, err := svc.Recommend(context.Background(), Query{Title: "  avatar ", Language: "French"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if res.Outcome != models.OutcomeMatch || res.Match == nil || res.Match.ID != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Language != "fr" {
		t.Errorf("Language = %q, want fr", res.Language)
	}
	if want := []string{"Avatar Twin", "Spectre", "Skyfall", "Amelie"}; !reflect.DeepEqual(titles(res.Recommendations), want) {
		t.Errorf("recommendations = %v, want %v", titles(res.Recommendations), want)
	}

	top := res.Recommendations[0]
	if top.Rank != 1 || !top.Enriched || top.PosterURL != "https://image.example/Avatar Twin" {
		t.Errorf("top = %+v", top)
	}

	degraded := res.Recommendations[1]
	if degraded.Enriched || degraded.Enrichment != models.PlaceholderEnrichment() {
		t.Errorf("failed enrichment should use the placeholder, got %+v", degraded)
	}
	if got := testutil.ToFloat64(metrics.EnrichmentResults.WithLabelValues("degraded")) - degradedBefore; got != 1 {
		t.Errorf("degraded metric moved by %v", got)
	}

	wantCalls := []string{"fr:Avatar Twin", "fr:Spectre", "fr:Skyfall", "fr:Amelie"}
	if !reflect.DeepEqual(enricher.calls, wantCalls) {
		t.Errorf("enrichment calls = %v, want %v (rank order)", enricher.calls, wantCalls)
	}
}

func TestService_Recommend_Limit(t *testing.T) {
	svc := NewService(testCatalog(t), nil, Options{TopK: 2})

	res, err := svc.Recommend(context.Background(), Query{Title: "Skyfall"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Spectre", "Avatar"}; !reflect.DeepEqual(titles(res.Recommendations), want) {
		t.Errorf("recommendations = %v, want %v", titles(res.Recommendations), want)
	}
	if res.Language != models.DefaultLanguage {
		t.Errorf("Language = %q", res.Language)
	}
	for _, r := range res.Recommendations {
		if r.Enriched || r.PosterURL != models.PlaceholderPosterURL {
			t.Errorf("disabled enrichment should give placeholders: %+v", r)
		}
	}

	res, err = svc.Recommend(context.Background(), Query{Title: "Skyfall", Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Recommendations) != 1 {
		t.Errorf("Limit ignored: %d", len(res.Recommendations))
	}
}

func TestService_Recommend_Capped(t *testing.T) {
	const n = 12
	data := make([]float32, n*n)
	movies := make([]models.Movie, n)
	for i := 0; i < n; i++ {
		movies[i] = models.Movie{ID: int64(i + 1), Title: "Movie " + strconv.Itoa(i+1), Tags: "drama"}
		for j := 0; j < n; j++ {
			data[i*n+j] = 0.5
		}
		data[i*n+i] = 1
	}
	m, err := similarity.NewMatrix(n, data)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewCatalog(&snapshot.Snapshot{Movies: movies, Matrix: m})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		topK  int
		limit int
	}{
		{"limit above cap", 10, 50},
		{"configured top k above cap", 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(c, nil, Options{TopK: tt.topK})
			res, err := svc.Recommend(context.Background(), Query{Title: "Movie 1", Limit: tt.limit})
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Recommendations) != MaxRecommendations {
				t.Errorf("got %d recommendations, want %d", len(res.Recommendations), MaxRecommendations)
			}
		})
	}
}

func TestService_Recommend_NoMatch(t *testing.T) {
	svc := NewService(testCatalog(t), nil, Options{SuggestionLimit: 3})

	t.Run("unknown title gets suggestions", func(t *testing.T) {
		res, err := svc.Recommend(context.Background(), Query{Title: "avat"})
		if err != nil {
			t.Fatal(err)
		}
		if res.Outcome != models.OutcomeNoMatch || len(res.Recommendations) != 0 {
			t.Errorf("expected no_match, got %+v", res)
		}
		if !reflect.DeepEqual(res.Suggestions, []string{"Avatar", "Avatar Twin"}) {
			t.Errorf("Suggestions = %v", res.Suggestions)
		}
	})

	t.Run("genre filter applied before lookup", func(t *testing.T) {
		res, err := svc.Recommend(context.Background(), Query{Title: "Amelie", Genre: "Action"})
		if err != nil {
			t.Fatal(err)
		}
		if res.Outcome != models.OutcomeNoMatch || !res.FilteredOut || len(res.Recommendations) != 0 {
			t.Errorf("expected filtered no_match, got %+v", res)
		}
	})

	t.Run("nothing similar", func(t *testing.T) {
		res, err := svc.Recommend(context.Background(), Query{Title: "Zardoz"})
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Suggestions) != 0 {
			t.Errorf("Suggestions = %v", res.Suggestions)
		}
	})
}

func TestService_Recommend_Errors(t *testing.T) {
	svc := NewService(testCatalog(t), nil, Options{})

	if _, err := svc.Recommend(context.Background(), Query{Title: "   "}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := svc.Recommend(context.Background(), Query{Title: "Avatar", Language: "xx"}); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Recommend(ctx, Query{Title: "Avatar"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCatalog_UnicodeFolding(t *testing.T) {
	m, _ := similarity.NewMatrix(2, []float32{1, 0.3, 0.3, 1})
	c, err := NewCatalog(&snapshot.Snapshot{
		Movies: []models.Movie{
			{ID: 1, Title: "Amélie", Tags: "paris romance"},
			{ID: 2, Title: "Die Straße", Tags: "drama"},
		},
		Matrix: m,
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		title string
		want  int
	}{
		{"combining accent", "ame\u0301lie", 0},
		{"upper case", "AMÉLIE", 0},
		{"sharp s folds to ss", "DIE STRASSE", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Lookup(tt.title, "")
			if !ok || got != tt.want {
				t.Errorf("Lookup(%q) = %d, %v; want %d", tt.title, got, ok, tt.want)
			}
		})
	}
}
