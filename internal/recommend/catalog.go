// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package recommend answers title queries against a loaded snapshot.
//
// A Catalog is built once from a snapshot and never mutated, so one value is
// shared by every request without locking.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/similarity"
	"github.com/tomtom215/reelmatch/internal/snapshot"
	"github.com/tomtom215/reelmatch/internal/textfold"
)

// Catalog is the read-only query context: movie table, similarity matrix and
// lookup indexes.
type Catalog struct {
	movies   []models.Movie
	matrix   *similarity.Matrix
	manifest snapshot.Manifest

	// Folded forms, see fold.
	lowerTitles []string
	lowerTags   []string
	byTitle     map[string]int
	byID        map[int64]int
}

// NewCatalog indexes a snapshot. When titles repeat, the first row in corpus
// order owns the title.
func NewCatalog(snap *snapshot.Snapshot) (*Catalog, error) {
	if snap == nil || snap.Matrix == nil {
		return nil, fmt.Errorf("%w: incomplete snapshot", snapshot.ErrMismatch)
	}
	if snap.Matrix.Len() != len(snap.Movies) {
		return nil, fmt.Errorf("%w: %d movies, %d matrix rows", snapshot.ErrMismatch, len(snap.Movies), snap.Matrix.Len())
	}

	n := len(snap.Movies)
	c := &Catalog{
		movies:      snap.Movies,
		matrix:      snap.Matrix,
		manifest:    snap.Manifest,
		lowerTitles: make([]string, n),
		lowerTags:   make([]string, n),
		byTitle:     make(map[string]int, n),
		byID:        make(map[int64]int, n),
	}
	for i, m := range snap.Movies {
		lt := textfold.Fold(m.Title)
		c.lowerTitles[i] = lt
		c.lowerTags[i] = textfold.Fold(m.Tags)
		if _, dup := c.byTitle[lt]; !dup {
			c.byTitle[lt] = i
		}
		if _, dup := c.byID[m.ID]; !dup {
			c.byID[m.ID] = i
		}
	}
	return c, nil
}

// Len is the number of movies.
func (c *Catalog) Len() int {
	return len(c.movies)
}

// Manifest describes the snapshot the catalog was built from.
func (c *Catalog) Manifest() snapshot.Manifest {
	return c.manifest
}

// Movie returns row i.
func (c *Catalog) Movie(i int) models.Movie {
	return c.movies[i]
}

// MovieByID finds a movie by its numeric id.
func (c *Catalog) MovieByID(id int64) (models.Movie, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Movie{}, false
	}
	return c.movies[i], true
}

// HasTitle reports whether title matches a stored title, ignoring case.
func (c *Catalog) HasTitle(title string) bool {
	_, ok := c.byTitle[textfold.Fold(title)]
	return ok
}

// Lookup finds the row of title among movies whose tag document contains
// genre. Both comparisons ignore case, and spaces in genre are dropped the
// way multi-word names are collapsed in tags. An empty genre matches every
// movie.
func (c *Catalog) Lookup(title, genre string) (int, bool) {
	lt := textfold.Fold(title)
	if genre == "" {
		i, ok := c.byTitle[lt]
		return i, ok
	}
	lg := textfold.Fold(strings.ReplaceAll(genre, " ", ""))
	for i, t := range c.lowerTitles {
		if t == lt && strings.Contains(c.lowerTags[i], lg) {
			return i, true
		}
	}
	return 0, false
}

// Suggest returns up to limit stored titles containing query, in corpus
// order.
func (c *Catalog) Suggest(query string, limit int) []string {
	q := textfold.Fold(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}
	var out []string
	for i, t := range c.lowerTitles {
		if strings.Contains(t, q) {
			out = append(out, c.movies[i].Title)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Neighbour is a movie row and its similarity to the query row.
type Neighbour struct {
	Index int
	Score float32
}

// Neighbours ranks every other movie by similarity to row i, highest first,
// ties in corpus order, and returns the first k.
func (c *Catalog) Neighbours(i, k int) []Neighbour {
	row := c.matrix.Row(i)
	ranked := make([]Neighbour, 0, len(row))
	for j, s := range row {
		if j != i {
			ranked = append(ranked, Neighbour{Index: j, Score: s})
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
