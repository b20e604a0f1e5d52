// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"time"

	"github.com/tomtom215/reelmatch/internal/logging"
)

// MaintenanceTask is one periodic cache chore.
type MaintenanceTask struct {
	Name string
	Run  func() error
}

// CacheMaintenanceService runs its tasks on a fixed interval: badger value
// log GC and expiry of in-memory enrichment entries. A failing task is
// logged and retried on the next tick; it never stops the service.
type CacheMaintenanceService struct {
	interval time.Duration
	tasks    []MaintenanceTask
}

// NewCacheMaintenanceService creates the service. A non-positive interval
// uses 5 minutes.
func NewCacheMaintenanceService(interval time.Duration, tasks ...MaintenanceTask) *CacheMaintenanceService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CacheMaintenanceService{interval: interval, tasks: tasks}
}

// Serve implements suture.Service.
func (s *CacheMaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce runs every task once.
func (s *CacheMaintenanceService) RunOnce() {
	for _, task := range s.tasks {
		start := time.Now()
		if err := task.Run(); err != nil {
			logging.Warn().Err(err).Str("task", task.Name).Msg("Cache maintenance task failed")
			continue
		}
		logging.Debug().Str("task", task.Name).Dur("duration", time.Since(start)).Msg("Cache maintenance task done")
	}
}

func (s *CacheMaintenanceService) String() string {
	return "cache-maintenance"
}
