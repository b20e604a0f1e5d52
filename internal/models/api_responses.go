// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

import (
	"time"
)

// APIResponse wraps every HTTP response.
//
// Status is "success" or "error". On error, Error is set and Data is null.
//
//	{
//	  "status": "success",
//	  "data": {"status": "match", "query": {...}, "recommendations": [...]},
//	  "metadata": {"timestamp": "2026-10-19T12:00:00Z", "query_time_ms": 12}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is the error body of a failed request.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	Movies        int       `json:"movies"`
	SnapshotBuilt time.Time `json:"snapshot_built_at"`
	Enrichment    string    `json:"enrichment"`
	BreakerState  string    `json:"breaker_state,omitempty"`
	Uptime        float64   `json:"uptime_seconds"`
}
