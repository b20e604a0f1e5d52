// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// CSVSource reads both tables with encoding/csv.
type CSVSource struct {
	MoviesPath  string
	CreditsPath string
}

// NewCSVSource creates a CSV-backed source.
func NewCSVSource(moviesPath, creditsPath string) *CSVSource {
	return &CSVSource{MoviesPath: moviesPath, CreditsPath: creditsPath}
}

// Load implements Source.
func (s *CSVSource) Load(ctx context.Context) ([]JoinedRow, MergeStats, error) {
	movies, invalid, err := readMoviesFile(ctx, s.MoviesPath)
	if err != nil {
		return nil, MergeStats{}, err
	}
	credits, err := readCreditsFile(ctx, s.CreditsPath)
	if err != nil {
		return nil, MergeStats{}, err
	}

	rows, stats := Merge(movies, credits)
	stats.InvalidID = invalid
	stats.MovieRows += invalid
	return rows, stats, nil
}

func readMoviesFile(ctx context.Context, path string) ([]MovieRow, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open movies table: %w", err)
	}
	defer f.Close()

	return ReadMovies(ctx, f)
}

func readCreditsFile(ctx context.Context, path string) ([]CreditRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open credits table: %w", err)
	}
	defer f.Close()

	return ReadCredits(ctx, f)
}

// ReadMovies parses a movies table. Rows whose id is not an integer are
// skipped and counted in the second return value.
func ReadMovies(ctx context.Context, r io.Reader) ([]MovieRow, int, error) {
	var (
		rows    []MovieRow
		invalid int
	)
	err := scanTable(ctx, r, MovieColumns, func(rec func(string) string) {
		id, err := strconv.ParseInt(strings.TrimSpace(rec("id")), 10, 64)
		if err != nil {
			invalid++
			logging.Debug().Str("title", rec("title")).Str("id", rec("id")).Msg("Movie row with invalid id skipped")
			return
		}
		rows = append(rows, MovieRow{
			ID:       id,
			Title:    rec("title"),
			Overview: rec("overview"),
			Genres:   rec("genres"),
			Keywords: rec("keywords"),
		})
	})
	if err != nil {
		return nil, 0, fmt.Errorf("read movies table: %w", err)
	}
	metrics.BuilderRowsDropped.WithLabelValues("invalid_id").Add(float64(invalid))
	return rows, invalid, nil
}

// ReadCredits parses a credits table. movie_id is optional; when present and
// numeric it is carried through.
func ReadCredits(ctx context.Context, r io.Reader) ([]CreditRow, error) {
	var rows []CreditRow
	err := scanTable(ctx, r, CreditColumns, func(rec func(string) string) {
		id, _ := strconv.ParseInt(strings.TrimSpace(rec("movie_id")), 10, 64)
		rows = append(rows, CreditRow{
			MovieID: id,
			Title:   rec("title"),
			Cast:    rec("cast"),
			Crew:    rec("crew"),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read credits table: %w", err)
	}
	return rows, nil
}

// scanTable reads a header row, checks required columns and calls fn once
// per record with a by-name accessor. Unknown column names read as "".
func scanTable(ctx context.Context, r io.Reader, required []string, fn func(rec func(string) string)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty table: %w", ErrMissingColumn)
		}
		return fmt.Errorf("read header: %w", err)
	}

	index := headerIndex(header)
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	for line := 1; ; line++ {
		if line%1000 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", line, err)
		}
		fn(func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		})
	}
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return index
}
