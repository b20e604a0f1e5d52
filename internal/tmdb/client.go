// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package tmdb talks to The Movie Database API and turns its answers into
display metadata for recommendations.

Client Features:
  - Client-side pacing with golang.org/x/time/rate
  - Automatic HTTP 429 handling with exponential backoff and Retry-After
  - Circuit breaker protection (CircuitBreakerClient)
  - Two-tier enrichment cache: in-memory LRU in front of BadgerDB

Every failure is returned to the caller. The recommendation service decides
how to degrade.
*/
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

var (
	// ErrNoResults is returned when a search matches no movie.
	ErrNoResults = errors.New("tmdb: no results")

	// ErrNoTrailer is returned when a movie has no YouTube trailer.
	ErrNoTrailer = errors.New("tmdb: no trailer")

	// ErrRateLimited is returned when retries after HTTP 429 are exhausted.
	ErrRateLimited = errors.New("tmdb: rate limit exceeded")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

const maxErrorBodySize = 64 * 1024

// readBodyForError reads at most maxErrorBodySize bytes of an error body and
// prefers TMDB's status_message when the body is its error JSON.
func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.StatusMessage != "" {
		return er.StatusMessage
	}
	return strings.TrimSpace(string(body))
}

// API is the subset of TMDB the enricher needs. Client and
// CircuitBreakerClient implement it.
type API interface {
	SearchMovie(ctx context.Context, title, language string) (*SearchResult, error)
	Videos(ctx context.Context, movieID int64) ([]Video, error)
}

// Client is a rate-limited TMDB v3 client.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a client from configuration.
func NewClient(cfg config.TMDBConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 20
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		limiter:        rate.NewLimiter(rate.Limit(rps), burst),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: time.Second,
	}
}

// SearchMovie returns the first search hit for title in language.
func (c *Client) SearchMovie(ctx context.Context, title, language string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("query", title)
	params.Set("language", language)

	var resp searchResponse
	if err := c.get(ctx, "search", "/search/movie", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoResults, title)
	}
	return &resp.Results[0], nil
}

// Videos lists the videos attached to a movie.
func (c *Client) Videos(ctx context.Context, movieID int64) ([]Video, error) {
	var resp videosResponse
	path := "/movie/" + strconv.FormatInt(movieID, 10) + "/videos"
	if err := c.get(ctx, "videos", path, url.Values{}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// get performs one API call and decodes a 200 response into out.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	start := time.Now()
	resp, err := c.doRequestWithRateLimit(ctx, endpoint, reqURL)
	if err != nil {
		metrics.RecordTMDBRequest(endpoint, 0, time.Since(start))
		return fmt.Errorf("tmdb %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.RecordTMDBRequest(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: readBodyForError(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb %s: decode response: %w", endpoint, err)
	}
	return nil
}

// doRequestWithRateLimit waits for the limiter, sends the request and
// retries on HTTP 429 with exponential backoff. A Retry-After header in
// seconds overrides the computed delay.
func (c *Client) doRequestWithRateLimit(ctx context.Context, endpoint, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http request: %w", redactKey(err, c.apiKey))
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		_ = resp.Body.Close()

		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("%w after %d retries", ErrRateLimited, c.maxRetries)
		}
		metrics.TMDBRetries.WithLabelValues(endpoint).Inc()

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(strings.TrimSpace(ra)); err == nil && secs >= 0 {
				delay = time.Duration(secs) * time.Second
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// redactKey strips the API key from transport errors, which embed the URL.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), key, "REDACTED"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
