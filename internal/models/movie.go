// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package models defines the data types shared between the builder, the
// snapshot format, the recommendation service and the HTTP API.
package models

// MovieRecord is one movie after feature extraction. Cast holds at most the
// configured number of top-billed names and Director is "" when the crew
// lists none.
type MovieRecord struct {
	ID       int64
	Title    string
	Overview string
	Genres   []string
	Keywords []string
	Cast     []string
	Director string
}

// Movie is a row of the persisted movie table. Tags is the lower-cased,
// space-joined tag document the similarity matrix was computed from.
type Movie struct {
	ID    int64  `json:"movie_id"`
	Title string `json:"title"`
	Tags  string `json:"tags"`
}

// Enrichment is the display metadata fetched for a recommendation. A zero
// value is never shown; callers start from PlaceholderEnrichment.
type Enrichment struct {
	PosterURL   string `json:"poster_url"`
	ReleaseYear string `json:"release_year"`
	Rating      string `json:"rating"`
	Overview    string `json:"overview"`
	TrailerURL  string `json:"trailer_url,omitempty"`
}

const (
	PlaceholderPosterURL = "https://via.placeholder.com/300x450?text=No+Image"
	NotAvailable         = "N/A"
	NoOverview           = "No overview available."
)

// PlaceholderEnrichment is shown when metadata could not be fetched.
func PlaceholderEnrichment() Enrichment {
	return Enrichment{
		PosterURL:   PlaceholderPosterURL,
		ReleaseYear: NotAvailable,
		Rating:      NotAvailable,
		Overview:    NoOverview,
	}
}
