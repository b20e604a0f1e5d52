// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package ingest

import (
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// Merge inner-joins movies with credits on exact title, keeping the order of
// the movies table.
//
// Titles are the downstream lookup key, so each title appears at most once in
// the result: the first movie row and the first credit row for a title win
// and later duplicates are counted and dropped. A movie whose id repeats an
// earlier kept id is dropped too.
func Merge(movies []MovieRow, credits []CreditRow) ([]JoinedRow, MergeStats) {
	stats := MergeStats{MovieRows: len(movies), CreditRows: len(credits)}

	creditByTitle := make(map[string]int, len(credits))
	for i, c := range credits {
		if _, seen := creditByTitle[c.Title]; !seen {
			creditByTitle[c.Title] = i
		}
	}

	matchedCredits := make(map[string]struct{}, len(credits))
	seenTitles := make(map[string]struct{}, len(movies))
	seenIDs := make(map[int64]struct{}, len(movies))
	joined := make([]JoinedRow, 0, len(movies))

	for _, m := range movies {
		ci, ok := creditByTitle[m.Title]
		if !ok {
			stats.UnmatchedMovies++
			continue
		}
		if _, dup := seenTitles[m.Title]; dup {
			stats.DuplicateTitles++
			logging.Warn().Str("title", m.Title).Int64("movie_id", m.ID).Msg("Duplicate title dropped")
			continue
		}
		if _, dup := seenIDs[m.ID]; dup {
			stats.DuplicateIDs++
			logging.Warn().Str("title", m.Title).Int64("movie_id", m.ID).Msg("Duplicate movie id dropped")
			continue
		}

		seenTitles[m.Title] = struct{}{}
		seenIDs[m.ID] = struct{}{}
		matchedCredits[m.Title] = struct{}{}

		c := credits[ci]
		joined = append(joined, JoinedRow{MovieRow: m, Cast: c.Cast, Crew: c.Crew})
	}

	for title := range creditByTitle {
		if _, ok := matchedCredits[title]; !ok {
			stats.UnmatchedCredits++
		}
	}
	stats.Joined = len(joined)

	metrics.BuilderRowsDropped.WithLabelValues("unmatched_title").Add(float64(stats.UnmatchedMovies))
	metrics.BuilderRowsDropped.WithLabelValues("duplicate_title").Add(float64(stats.DuplicateTitles))
	metrics.BuilderRowsDropped.WithLabelValues("duplicate_id").Add(float64(stats.DuplicateIDs))

	return joined, stats
}
