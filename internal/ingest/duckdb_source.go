// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// DuckDBSource parses both tables with an in-memory DuckDB connection.
// Every column is read as VARCHAR so the raw JSON columns reach feature
// extraction untouched.
type DuckDBSource struct {
	MoviesPath  string
	CreditsPath string
}

// NewDuckDBSource creates a DuckDB-backed source.
func NewDuckDBSource(moviesPath, creditsPath string) *DuckDBSource {
	return &DuckDBSource{MoviesPath: moviesPath, CreditsPath: creditsPath}
}

// Load implements Source.
func (s *DuckDBSource) Load(ctx context.Context) ([]JoinedRow, MergeStats, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, MergeStats{}, fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()

	// One connection keeps the scan single-threaded so rows come back in
	// file order.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "SET threads = 1"); err != nil {
		return nil, MergeStats{}, fmt.Errorf("configure duckdb: %w", err)
	}

	if err := verifyColumns(ctx, db, s.MoviesPath, MovieColumns); err != nil {
		return nil, MergeStats{}, fmt.Errorf("movies table: %w", err)
	}
	if err := verifyColumns(ctx, db, s.CreditsPath, CreditColumns); err != nil {
		return nil, MergeStats{}, fmt.Errorf("credits table: %w", err)
	}

	movies, invalid, err := queryMovies(ctx, db, s.MoviesPath)
	if err != nil {
		return nil, MergeStats{}, err
	}
	credits, err := queryCredits(ctx, db, s.CreditsPath)
	if err != nil {
		return nil, MergeStats{}, err
	}

	rows, stats := Merge(movies, credits)
	stats.InvalidID = invalid
	stats.MovieRows += invalid

	logging.Debug().
		Int("movie_rows", stats.MovieRows).
		Int("credit_rows", stats.CreditRows).
		Int("joined", stats.Joined).
		Msg("DuckDB tables loaded")

	return rows, stats, nil
}

// readCSV returns the table expression for a CSV file. The path is inlined
// as a string literal because read_csv does not accept bound parameters
// inside CREATE or DESCRIBE statements.
func readCSV(path string) string {
	return fmt.Sprintf("read_csv(%s, header = true, all_varchar = true, quote = '\"', escape = '\"')", quoteLiteral(path))
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func verifyColumns(ctx context.Context, db *sql.DB, path string, required []string) error {
	rows, err := db.QueryContext(ctx, "DESCRIBE SELECT * FROM "+readCSV(path))
	if err != nil {
		return fmt.Errorf("describe %s: %w", path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("describe columns: %w", err)
	}

	present := make(map[string]bool)
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan describe row: %w", err)
		}
		// column_name is the first DESCRIBE column
		present[strings.ToLower(values[0].String)] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate describe rows: %w", err)
	}

	for _, col := range required {
		if !present[col] {
			return fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return nil
}

func queryMovies(ctx context.Context, db *sql.DB, path string) ([]MovieRow, int, error) {
	query := `SELECT id, title, overview, genres, keywords FROM ` + readCSV(path)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var (
		result  []MovieRow
		invalid int
	)
	for rows.Next() {
		var id, title, overview, genres, keywords sql.NullString
		if err := rows.Scan(&id, &title, &overview, &genres, &keywords); err != nil {
			return nil, 0, fmt.Errorf("scan movie row: %w", err)
		}
		parsed, err := strconv.ParseInt(strings.TrimSpace(id.String), 10, 64)
		if err != nil {
			invalid++
			continue
		}
		result = append(result, MovieRow{
			ID:       parsed,
			Title:    title.String,
			Overview: overview.String,
			Genres:   genres.String,
			Keywords: keywords.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate movies: %w", err)
	}

	metrics.BuilderRowsDropped.WithLabelValues("invalid_id").Add(float64(invalid))
	return result, invalid, nil
}

func queryCredits(ctx context.Context, db *sql.DB, path string) ([]CreditRow, error) {
	query := `SELECT title, "cast", crew FROM ` + readCSV(path)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query credits: %w", err)
	}
	defer rows.Close()

	var result []CreditRow
	for rows.Next() {
		var title, cast, crew sql.NullString
		if err := rows.Scan(&title, &cast, &crew); err != nil {
			return nil, fmt.Errorf("scan credit row: %w", err)
		}
		result = append(result, CreditRow{Title: title.String, Cast: cast.String, Crew: crew.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credits: %w", err)
	}
	return result, nil
}
