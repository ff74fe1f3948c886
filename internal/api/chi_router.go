// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/reportkit/internal/config"
	"github.com/tomtom215/reportkit/internal/middleware"
)

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router whose CORS and rate limits come from the
// security config section.
func NewRouter(handler *Handler, sec config.SecurityConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddlewareFromConfig(sec),
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight
	r.Use(router.handler.PerformanceMonitor().Middleware)

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/performance", router.handler.HealthPerformance)
	})

	// ========================
	// Report Endpoints
	// ========================
	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		// Websocket upgrades must not pass through compression.
		r.With(router.chiMiddleware.RateLimitWebSocket(), ReportContext()).Get("/{id}/live", router.handler.LiveReport)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Compress(5, "application/json"))
			r.Use(ReportContext())

			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimit())
				r.Get("/", router.handler.ListReports)
				r.Get("/{id}", router.handler.GetReport)
			})

			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitWrite())
				r.Post("/", router.handler.CreateReport)
				r.Put("/{id}", router.handler.ReplaceReport)
				r.Delete("/{id}", router.handler.DeleteReport)
				r.Post("/{id}/save", router.handler.SaveReport)
			})

			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitAnalytics())
				r.Post("/{id}/actions", router.handler.ReportActions)
				r.Post("/{id}/chart", router.handler.ReportChart)
				r.Post("/{id}/summary", router.handler.ReportSummary)
				r.Post("/{id}/visibility", router.handler.ToggleSerie)
				r.Patch("/{id}/series/{itemID}", router.handler.EditItem)
			})
		})
	})

	// ========================
	// Query Cache
	// ========================
	r.Route("/api/v1/cache", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.chiMiddleware.RateLimitWrite())
		r.Delete("/", router.handler.DeleteQueryCache)
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
