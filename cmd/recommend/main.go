// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package main is an interactive recommendation shell.
//
// It reads one movie title per line from standard input and prints the
// closest matches with their poster URLs, until "exit" or end of input.
//
//	$ reelmatch-recommend -lang fr -genre action
//	Movie title> avatar
//
// Configuration is shared with the server (SNAPSHOT_DIR, TMDB_API_KEY, ...).
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tomtom215/reelmatch/internal/app"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

const prompt = "Movie title> "

// shellOptions are the per-session query settings.
type shellOptions struct {
	Language string
	Genre    string
	Limit    int
}

func main() {
	var opts shellOptions
	flag.StringVar(&opts.Language, "lang", "", "metadata language code or name (default from config)")
	flag.StringVar(&opts.Genre, "genre", "", "only match titles whose tags contain this genre")
	flag.IntVar(&opts.Limit, "k", 5, "number of recommendations to print")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// The shell owns stdout; logs go to stderr and default to warnings only.
	level := cfg.Logging.Level
	if os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	logging.Init(logging.Config{Level: level, Format: "console", Output: os.Stderr})

	rt, err := app.NewRuntime(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation runtime")
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing enrichment cache")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runShell(ctx, rt.Service, opts, os.Stdin, os.Stdout); err != nil {
		logging.Error().Err(err).Msg("Shell stopped")
	}
}

// runShell reads titles from in until "exit", EOF or cancellation.
func runShell(ctx context.Context, svc *recommend.Service, opts shellOptions, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, "exit") {
			return nil
		}
		if line == "" {
			continue
		}

		res, err := svc.Recommend(ctx, recommend.Query{
			Title:    line,
			Language: opts.Language,
			Genre:    opts.Genre,
			Limit:    opts.Limit,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		printResult(out, res)
	}
}

func printResult(out io.Writer, res *models.RecommendationResult) {
	if res.Outcome == models.OutcomeNoMatch {
		switch {
		case res.FilteredOut:
			fmt.Fprintf(out, "%q is not tagged %q.\n", res.Query, res.Genre)
		case len(res.Suggestions) > 0:
			fmt.Fprintf(out, "Movie not found. Did you mean: %s?\n", strings.Join(res.Suggestions, ", "))
		default:
			fmt.Fprintln(out, "Movie not found.")
		}
		return
	}

	fmt.Fprintf(out, "Because you liked %s:\n", res.Match.Title)
	for _, rec := range res.Recommendations {
		fmt.Fprintf(out, "%2d. %s (%s, rating %s)\n    %s\n", rec.Rank, rec.Title, rec.ReleaseYear, rec.Rating, rec.PosterURL)
	}
}
