// Reelmatch - Content-Based Movie Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package main serves recommendations over HTTP.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 (environment > config.yaml > defaults)
//  2. Snapshot: movie table and similarity matrix written by cmd/builder
//  3. Enrichment (optional): TMDB client behind a circuit breaker, with an
//     in-memory LRU in front of a BadgerDB cache
//  4. Supervisor tree: HTTP server and cache maintenance under suture
//
// Without TMDB_API_KEY the server still answers, with placeholder metadata.
//
// # Signal Handling
//
// SIGINT and SIGTERM stop the supervisor tree; the HTTP server drains
// in-flight requests for up to server.shutdown_timeout.
//
// # Example Usage
//
//	export SNAPSHOT_DIR=./snapshot
//	export TMDB_API_KEY=your-api-key
//	./reelmatch-server
//	curl 'localhost:8088/api/v1/recommendations?title=Avatar&lang=fr'
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/reelmatch/internal/api"
	"github.com/tomtom215/reelmatch/internal/app"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/supervisor"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
)

const cacheMaintenanceInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Reelmatch server with supervisor tree")

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

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	handlerOpts := api.HandlerOptions{EnrichmentEnabled: rt.Enricher != nil}
	if rt.Breaker != nil {
		handlerOpts.BreakerState = rt.Breaker.State
	}
	router := api.NewRouter(
		api.NewHandler(rt.Service, handlerOpts),
		api.ChiMiddlewareConfigFromServer(cfg.Server),
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	if rt.Enricher != nil {
		tasks := []services.MaintenanceTask{{
			Name: "memory-expiry",
			Run: func() error {
				if n := rt.Enricher.CleanupExpired(); n > 0 {
					logging.Debug().Int("removed", n).Msg("Expired enrichment entries dropped")
				}
				return nil
			},
		}}
		if rt.Disk != nil {
			tasks = append(tasks, services.MaintenanceTask{Name: "badger-gc", Run: rt.Disk.RunGC})
		}
		tree.AddCacheService(services.NewCacheMaintenanceService(cacheMaintenanceInterval, tasks...))
	}

	logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}
	logging.Info().Msg("Server stopped")
}
