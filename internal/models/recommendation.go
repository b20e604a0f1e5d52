// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

// Recommendation is one ranked neighbour of the queried movie.
type Recommendation struct {
	Rank    int     `json:"rank"`
	MovieID int64   `json:"movie_id"`
	Title   string  `json:"title"`
	Score   float32 `json:"score"`

	Enrichment

	// Enriched is false when placeholder metadata is shown.
	Enriched bool `json:"enriched"`
}

// Outcomes of a recommendation query.
const (
	OutcomeMatch   = "match"
	OutcomeNoMatch = "no_match"
)

// RecommendationResult is the answer to one query. Exactly one of
// Recommendations (on a match) or Suggestions (on no match) is meaningful.
type RecommendationResult struct {
	Query    string `json:"query"`
	Language string `json:"language"`
	Genre    string `json:"genre,omitempty"`
	Outcome  string `json:"outcome"`

	// Match is the movie the title resolved to.
	Match *Movie `json:"match,omitempty"`

	Recommendations []Recommendation `json:"recommendations"`

	// Suggestions lists stored titles containing the query when it matched
	// no title exactly.
	Suggestions []string `json:"suggestions,omitempty"`

	// FilteredOut is set when the title exists but the genre filter
	// excluded it.
	FilteredOut bool `json:"filtered_out,omitempty"`
}
