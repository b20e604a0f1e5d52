// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package vectorize turns tag documents into sparse token-count vectors over
// a fixed, frequency-capped vocabulary.
//
// Fitting is deterministic. Terms are ranked by total corpus frequency with
// ties broken lexicographically, and the kept terms are assigned column
// indices in alphabetical order.
package vectorize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxVocabulary caps the vocabulary when no limit is configured.
const DefaultMaxVocabulary = 5000

// ErrEmptyVocabulary is returned when no document yields a single term.
var ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain only stopwords or no tokens")

// tokenPattern keeps runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lower-cases doc and splits it into word tokens.
func Tokenize(doc string) []string {
	return tokenPattern.FindAllString(strings.ToLower(doc), -1)
}

// Options configures Fit.
type Options struct {
	MaxVocabulary int
	Stopwords     Stopwords
}

// VectorSpace is an immutable term-to-column mapping.
type VectorSpace struct {
	terms []string
	index map[string]int
}

// Size is the number of columns.
func (v *VectorSpace) Size() int {
	return len(v.terms)
}

// Terms returns the vocabulary in column order.
func (v *VectorSpace) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Column returns the column of term.
func (v *VectorSpace) Column(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// SparseVector holds the non-zero counts of one document. Indices are
// strictly increasing.
type SparseVector struct {
	Indices []int
	Counts  []float64
}

// Empty reports whether the vector has no non-zero entry.
func (s SparseVector) Empty() bool {
	return len(s.Indices) == 0
}

// Norm is the Euclidean length of the vector.
func (s SparseVector) Norm() float64 {
	var sum float64
	for _, c := range s.Counts {
		sum += c * c
	}
	return math.Sqrt(sum)
}

// Dense expands the vector to width columns.
func (s SparseVector) Dense(width int) []float64 {
	out := make([]float64, width)
	for k, i := range s.Indices {
		out[i] = s.Counts[k]
	}
	return out
}

// Transform counts the in-vocabulary tokens of doc.
func (v *VectorSpace) Transform(doc string) SparseVector {
	counts := make(map[int]float64)
	for _, tok := range Tokenize(doc) {
		if col, ok := v.index[tok]; ok {
			counts[col]++
		}
	}
	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Counts:  make([]float64, 0, len(counts)),
	}
	for col := range counts {
		vec.Indices = append(vec.Indices, col)
	}
	sort.Ints(vec.Indices)
	for _, col := range vec.Indices {
		vec.Counts = append(vec.Counts, counts[col])
	}
	return vec
}

// Fit builds the vocabulary from docs and returns one vector per document,
// in input order.
func Fit(ctx context.Context, docs []string, opts Options) (*VectorSpace, []SparseVector, error) {
	limit := opts.MaxVocabulary
	if limit <= 0 {
		limit = DefaultMaxVocabulary
	}

	freq := make(map[string]int)
	for i, doc := range docs {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, fmt.Errorf("fit vocabulary: %w", err)
			}
		}
		for _, tok := range Tokenize(doc) {
			if !opts.Stopwords.Contains(tok) {
				freq[tok]++
			}
		}
	}
	if len(freq) == 0 {
		return nil, nil, ErrEmptyVocabulary
	}

	ranked := make([]string, 0, len(freq))
	for term := range freq {
		ranked = append(ranked, term)
	}
	sort.Slice(ranked, func(a, b int) bool {
		fa, fb := freq[ranked[a]], freq[ranked[b]]
		if fa != fb {
			return fa > fb
		}
		return ranked[a] < ranked[b]
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	sort.Strings(ranked)

	space := &VectorSpace{terms: ranked, index: make(map[string]int, len(ranked))}
	for i, term := range ranked {
		space.index[term] = i
	}

	vectors := make([]SparseVector, len(docs))
	for i, doc := range docs {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, fmt.Errorf("transform documents: %w", err)
			}
		}
		vectors[i] = space.Transform(doc)
	}
	return space, vectors, nil
}
