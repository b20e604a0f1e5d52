// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package similarity computes and holds the dense pairwise cosine similarity
// matrix of the corpus.
package similarity

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/reelmatch/internal/vectorize"
)

// ErrShape is returned when matrix data does not match its dimension.
var ErrShape = errors.New("similarity matrix shape mismatch")

// Matrix is a symmetric n x n matrix stored row-major. Row i corresponds to
// corpus row i.
type Matrix struct {
	n    int
	data []float32
}

// NewMatrix wraps row-major data of an n x n matrix.
func NewMatrix(n int, data []float32) (*Matrix, error) {
	if n < 0 || len(data) != n*n {
		return nil, fmt.Errorf("%w: %d values for n=%d", ErrShape, len(data), n)
	}
	return &Matrix{n: n, data: data}, nil
}

// Len is the number of rows.
func (m *Matrix) Len() int {
	return m.n
}

// At returns cell (i, j).
func (m *Matrix) At(i, j int) float32 {
	return m.data[i*m.n+j]
}

// Row returns row i. The slice aliases the matrix and must not be modified.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.n : (i+1)*m.n]
}

// Data returns the row-major backing slice.
func (m *Matrix) Data() []float32 {
	return m.data
}

// Compute returns the cosine similarity of every pair of vectors. Pairs
// involving a zero vector score 0, including its own diagonal cell.
func Compute(ctx context.Context, vectors []vectorize.SparseVector) (*Matrix, error) {
	n := len(vectors)
	m := &Matrix{n: n, data: make([]float32, n*n)}

	norms := make([]float64, n)
	postings := make(map[int][]posting)
	for i, v := range vectors {
		norms[i] = v.Norm()
		for k, col := range v.Indices {
			postings[col] = append(postings[col], posting{doc: i, count: v.Counts[k]})
		}
	}

	dots := make([]float64, n)
	for i, v := range vectors {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("compute similarity row %d: %w", i, err)
		}
		if norms[i] == 0 {
			continue
		}

		clear(dots)
		// Postings are in document order, so only j >= i is accumulated.
		for k, col := range v.Indices {
			ci := v.Counts[k]
			for _, p := range postings[col] {
				if p.doc >= i {
					dots[p.doc] += ci * p.count
				}
			}
		}

		m.data[i*n+i] = 1
		for j := i + 1; j < n; j++ {
			if dots[j] == 0 {
				continue
			}
			s := float32(dots[j] / (norms[i] * norms[j]))
			if s > 1 {
				s = 1
			}
			m.data[i*n+j] = s
			m.data[j*n+i] = s
		}
	}
	return m, nil
}

type posting struct {
	doc   int
	count float64
}
