// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package ingest reads the movie and credit tables and joins them on title.
//
// Two readers exist. DuckDBSource parses both files with DuckDB's read_csv,
// which copes with the multi-line quoted JSON columns of the TMDB export.
// CSVSource uses encoding/csv and has no native dependency. Both hand their
// rows to Merge, so the join semantics are identical.
package ingest

import (
	"context"
	"errors"
)

// ErrMissingColumn is returned when an input table lacks a required column.
var ErrMissingColumn = errors.New("required column missing")

// Required column names.
var (
	MovieColumns  = []string{"id", "title", "overview", "genres", "keywords"}
	CreditColumns = []string{"title", "cast", "crew"}
)

// MovieRow is one row of the movies table. List-of-object columns stay as
// their raw JSON text; feature extraction parses them.
type MovieRow struct {
	ID       int64
	Title    string
	Overview string
	Genres   string
	Keywords string
}

// CreditRow is one row of the credits table.
type CreditRow struct {
	MovieID int64
	Title   string
	Cast    string
	Crew    string
}

// JoinedRow is a movie row matched with its credit row.
type JoinedRow struct {
	MovieRow
	Cast string
	Crew string
}

// MergeStats counts what the join discarded.
type MergeStats struct {
	MovieRows        int `json:"movie_rows"`
	CreditRows       int `json:"credit_rows"`
	Joined           int `json:"joined"`
	InvalidID        int `json:"invalid_id"`
	UnmatchedMovies  int `json:"unmatched_movies"`
	UnmatchedCredits int `json:"unmatched_credits"`
	DuplicateTitles  int `json:"duplicate_titles"`
	DuplicateIDs     int `json:"duplicate_ids"`
}

// Dropped is the number of movie rows that did not make it into the corpus.
func (s MergeStats) Dropped() int {
	return s.InvalidID + s.UnmatchedMovies + s.DuplicateTitles + s.DuplicateIDs
}

// Source loads and joins the two input tables.
type Source interface {
	Load(ctx context.Context) ([]JoinedRow, MergeStats, error)
}
