// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"strings"
	"unicode"

	"github.com/tomtom215/reelmatch/internal/ingest"
	"github.com/tomtom215/reelmatch/internal/models"
)

// DefaultCastLimit is the number of top-billed cast members kept.
const DefaultCastLimit = 3

// TagDocument is the bag of tokens describing one movie.
type TagDocument struct {
	tokens []string
}

// Tokens returns a copy of the document tokens in construction order.
func (d TagDocument) Tokens() []string {
	out := make([]string, len(d.tokens))
	copy(out, d.tokens)
	return out
}

// Text is the lower-cased, space-joined form persisted with the movie table.
func (d TagDocument) Text() string {
	return strings.ToLower(strings.Join(d.tokens, " "))
}

// Empty reports whether the document has no tokens.
func (d TagDocument) Empty() bool {
	return len(d.tokens) == 0
}

// NormalizeTokens removes all whitespace inside each token so multi-word
// entities become single tokens ("Science Fiction" -> "ScienceFiction").
// Tokens that end up empty are dropped.
func NormalizeTokens(seq []string) []string {
	out := make([]string, 0, len(seq))
	for _, tok := range seq {
		collapsed := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, tok)
		if collapsed != "" {
			out = append(out, collapsed)
		}
	}
	return out
}

// BuildTagDocument concatenates overview words, genres, keywords, cast and
// director, in that order. Entity tokens are normalized; overview words are
// split on whitespace and kept as they are.
func BuildTagDocument(rec models.MovieRecord) TagDocument {
	tokens := make([]string, 0, 64)
	tokens = append(tokens, strings.Fields(rec.Overview)...)
	tokens = append(tokens, NormalizeTokens(rec.Genres)...)
	tokens = append(tokens, NormalizeTokens(rec.Keywords)...)
	tokens = append(tokens, NormalizeTokens(rec.Cast)...)
	if rec.Director != "" {
		tokens = append(tokens, NormalizeTokens([]string{rec.Director})...)
	}
	return TagDocument{tokens: tokens}
}

// Degradation names a field that fell back to empty for one movie.
type Degradation struct {
	Field  string
	Reason string
}

// BuildRecord extracts every feature field of a joined row.
func BuildRecord(row ingest.JoinedRow, castLimit int) (models.MovieRecord, []Degradation) {
	if castLimit <= 0 {
		castLimit = DefaultCastLimit
	}

	var degraded []Degradation
	take := func(field string, r FieldResult) []string {
		if r.Degraded() {
			degraded = append(degraded, Degradation{Field: field, Reason: r.Reason})
		}
		return r.Values
	}

	rec := models.MovieRecord{
		ID:       row.ID,
		Title:    row.Title,
		Overview: row.Overview,
		Genres:   take("genres", ExtractNames(row.Genres)),
		Keywords: take("keywords", ExtractNames(row.Keywords)),
		Cast:     take("cast", ExtractCast(row.Cast, castLimit)),
	}
	if d := take("crew", ExtractDirector(row.Crew)); len(d) > 0 {
		rec.Director = d[0]
	}
	return rec, degraded
}
