// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

// Package main is the entry point for the Shelfline server.
//
// Shelfline is a self-hosted retail analytics engine: it trains
// recommendation, stock forecasting, and basket analysis artifacts
// offline from an order history in DuckDB, persists them to a Badger
// artifact store, and serves them over a REST API.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 with defaults, config.yaml, and
//     SHELFLINE_-prefixed environment variables
//  2. Database: DuckDB catalog and transaction store, optionally seeded
//     with a deterministic demo dataset
//  3. Artifact store: Badger, loading the latest published bundle into
//     the serving cache if one exists
//  4. Trainer and recommendation engine
//  5. Supervisor tree: training layer (scheduled retraining) and api
//     layer (HTTP server)
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP
// server stops accepting connections and drains in-flight requests
// within the configured shutdown timeout, then the database and
// artifact store are closed.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/shelfline/internal/api"
	"github.com/tomtom215/shelfline/internal/artifact"
	"github.com/tomtom215/shelfline/internal/config"
	"github.com/tomtom215/shelfline/internal/database"
	"github.com/tomtom215/shelfline/internal/logging"
	"github.com/tomtom215/shelfline/internal/recommend"
	"github.com/tomtom215/shelfline/internal/supervisor"
	"github.com/tomtom215/shelfline/internal/supervisor/services"
	"github.com/tomtom215/shelfline/internal/train"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Default logger; config is not available yet
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Addr()).
		Str("db_path", cfg.Database.Path).
		Str("artifacts_path", cfg.Artifacts.Path).
		Msg("Starting Shelfline")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedDemoData {
		if err := db.SeedDemoData(context.Background()); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed demo data")
		}
	}

	store, err := artifact.Open(cfg.Artifacts.Path, cfg.Artifacts.KeepGenerations)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open artifact store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing artifact store")
		}
	}()

	cache := artifact.NewCache()

	// Serve the last published generation immediately; a fresh install
	// stays in the fail-closed state until the first training run.
	if bundle, err := store.LoadLatest(); err == nil {
		cache.Set(bundle)
		logging.Info().
			Str("generation", bundle.Generation).
			Time("trained_at", bundle.TrainedAt).
			Msg("Loaded latest artifact bundle")
	} else {
		logging.Warn().Err(err).Msg("No artifact bundle available yet")
	}

	trainer := train.NewTrainer(db, store, cache, cfg.Training)
	handler := api.NewHandler(cache, recommend.NewEngine(), trainer)
	router := api.NewRouter(cfg.Server, handler)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddTrainingService(services.NewTrainingService(trainer, cfg.Training))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	logging.Info().Msg("Shelfline stopped")
}
