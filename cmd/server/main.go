// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/reportkit/internal/api"
	"github.com/tomtom215/reportkit/internal/config"
	"github.com/tomtom215/reportkit/internal/database"
	"github.com/tomtom215/reportkit/internal/live"
	"github.com/tomtom215/reportkit/internal/logging"
	"github.com/tomtom215/reportkit/internal/query"
	"github.com/tomtom215/reportkit/internal/session"
	"github.com/tomtom215/reportkit/internal/store"
	"github.com/tomtom215/reportkit/internal/supervisor"
	"github.com/tomtom215/reportkit/internal/supervisor/services"
)

const shutdownTimeout = 10 * time.Second

//nolint:gocyclo // sequential setup
func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("duckdb_path", cfg.Database.Path).
		Bool("live", cfg.Live.Enabled).
		Msg("Starting ReportKit")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event store")
		}
	}()
	if cfg.Database.SeedDemoData {
		if err := db.SeedDemoEvents(context.Background(), time.Now()); err != nil {
			logging.Error().Err(err).Msg("Failed to seed demo events")
		}
	}

	reports, err := store.Open(cfg.Store)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to open report store")
		return
	}
	defer func() {
		if err := reports.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing report store")
		}
	}()

	// engine <- breaker <- cache: cached hits never count against the breaker.
	var querier query.Querier = query.NewDuckDBEngine(db)
	var breaker *query.BreakerQuerier
	if cfg.Breaker.Enabled {
		breaker = query.NewBreakerQuerier(querier, cfg.Breaker)
		querier = breaker
	}
	var cached *query.CachedQuerier
	if cfg.Cache.Enabled {
		cached = query.NewCachedQuerier(querier, cfg.Cache)
		querier = cached
	}

	sessions := session.NewManager(querier, session.OptionsFromConfig(cfg.Report))
	defer sessions.CloseAll()

	var hub *live.Hub
	var refresher *live.Refresher
	if cfg.Live.Enabled {
		hub = live.NewHub(live.ConfigFrom(cfg.Live))
		refresher = live.NewRefresher(hub, sessions, cfg.Live.Interval)
		refresher.SetVisibleCap(cfg.Report.VisibleCap)
	}

	handler := api.NewHandler(reports, sessions, cfg, hub)
	handler.SetDatabase(db)
	handler.SetQueryChain(cached, breaker)

	router := api.NewRouter(handler, cfg.Security)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  shutdownTimeout,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return
	}

	if cfg.Store.GCInterval > 0 && !cfg.Store.InMemory {
		tree.AddDataService(services.NewStoreGCService(reports, cfg.Store.GCInterval, cfg.Store.GCDiscardRatio))
	}
	if hub != nil {
		tree.AddLiveService(services.NewLiveHubService(hub))
		tree.AddLiveService(refresher)
		logging.Info().Dur("interval", cfg.Live.Interval).Int("max_clients", cfg.Live.MaxClients).Msg("Live refresh enabled")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
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

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Int("sessions", sessions.Len()).Msg("ReportKit stopped")
}
