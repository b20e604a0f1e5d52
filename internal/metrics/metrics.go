// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package metrics holds the Prometheus collectors for the builder, the
// recommendation shell and its metadata service client.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Builder metrics
	BuilderStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_builder_stage_duration_seconds",
			Help:    "Duration of each builder stage in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"}, // "load", "features", "vectorize", "similarity", "persist"
	)

	BuilderCorpusSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_builder_corpus_size",
			Help: "Number of movies in the most recently built corpus",
		},
	)

	BuilderVocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_builder_vocabulary_size",
			Help: "Number of terms in the most recently fitted vocabulary",
		},
	)

	BuilderRowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_builder_rows_dropped_total",
			Help: "Input rows dropped while merging the movie and credit tables",
		},
		[]string{"reason"}, // "unmatched_title", "duplicate_title", "duplicate_id"
	)

	BuilderFieldsDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_builder_fields_degraded_total",
			Help: "Feature fields that degraded to empty because their raw value could not be parsed",
		},
		[]string{"field", "reason"},
	)

	// Shell metrics
	SnapshotMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_snapshot_movies",
			Help: "Number of movies in the loaded snapshot",
		},
	)

	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_recommendation_requests_total",
			Help: "Recommendation queries by outcome",
		},
		[]string{"outcome"}, // "match", "no_match", "error"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelmatch_recommendation_duration_seconds",
			Help:    "End-to-end recommendation latency including enrichment",
			Buckets: prometheus.DefBuckets,
		},
	)

	EnrichmentResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_enrichment_results_total",
			Help: "Per-recommendation enrichment outcomes",
		},
		[]string{"result"}, // "enriched", "degraded"
	)

	// Metadata service client metrics
	TMDBRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_tmdb_requests_total",
			Help: "Requests sent to the metadata service",
		},
		[]string{"endpoint", "status"},
	)

	TMDBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_tmdb_request_duration_seconds",
			Help:    "Metadata service request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	TMDBRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_tmdb_retries_total",
			Help: "Retries after HTTP 429 responses",
		},
		[]string{"endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmatch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_circuit_breaker_requests_total",
			Help: "Requests passing through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_cache_hits_total",
			Help: "Enrichment cache hits by layer",
		},
		[]string{"layer"}, // "memory", "disk"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_cache_misses_total",
			Help: "Enrichment cache misses by layer",
		},
		[]string{"layer"},
	)

	// HTTP metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_api_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_api_active_requests",
			Help: "HTTP requests currently being served",
		},
	)
)

// ObserveStage records how long a builder stage took.
func ObserveStage(stage string, d time.Duration) {
	BuilderStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordTMDBRequest records one metadata service round trip.
func RecordTMDBRequest(endpoint string, statusCode int, d time.Duration) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	TMDBRequests.WithLabelValues(endpoint, status).Inc()
	TMDBRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route, status string, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}
