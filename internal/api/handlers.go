// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reportkit/internal/chart"
	"github.com/tomtom215/reportkit/internal/config"
	"github.com/tomtom215/reportkit/internal/live"
	"github.com/tomtom215/reportkit/internal/logging"
	"github.com/tomtom215/reportkit/internal/middleware"
	"github.com/tomtom215/reportkit/internal/models"
	"github.com/tomtom215/reportkit/internal/query"
	"github.com/tomtom215/reportkit/internal/session"
	"github.com/tomtom215/reportkit/internal/store"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Pinger is a dependency the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, optional dependencies
//   - handlers_helpers.go: response and request helpers
//   - handlers_health.go: health and readiness probes
//   - handlers_reports.go: saved report CRUD
//   - handlers_session.go: actions, chart, summary, visibility, edits
//   - handlers_live.go: websocket subscription
type Handler struct {
	reports   store.Store
	sessions  *session.Manager
	config    *config.Config
	hub       *live.Hub
	db        Pinger
	cache     *query.CachedQuerier
	breaker   *query.BreakerQuerier
	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates the API handler.
//
// reports persists definitions, sessions owns the live report state, and
// hub (optional) receives report_changed messages after every action.
func NewHandler(reports store.Store, sessions *session.Manager, cfg *config.Config, hub *live.Hub) *Handler {
	h := &Handler{
		reports:   reports,
		sessions:  sessions,
		config:    cfg,
		hub:       hub,
		startTime: time.Now(),
		now:       time.Now,
		perfMon:   middleware.NewPerformanceMonitor(1000),
	}
	if hub != nil && sessions != nil {
		hub.OnStrokeFinalized(func(reportID string) {
			if sess, ok := sessions.Get(reportID); ok {
				sess.FinalizeStroke()
			}
		})
	}
	return h
}

// visibleCap is the default number of series shown outside edit mode.
func (h *Handler) visibleCap() int {
	if h.config != nil && h.config.Report.VisibleCap > 0 {
		return h.config.Report.VisibleCap
	}
	return chart.DefaultVisibleCap
}

// SetDatabase registers the query database for readiness checks.
func (h *Handler) SetDatabase(db Pinger) {
	h.db = db
}

// SetQueryChain registers the cache and breaker layers of the query chain
// so health can report on them. Either may be nil.
func (h *Handler) SetQueryChain(cache *query.CachedQuerier, breaker *query.BreakerQuerier) {
	h.cache = cache
	h.breaker = breaker
}

// ClearCache drops every cached query result and returns how many were
// dropped.
func (h *Handler) ClearCache() int {
	if h.cache == nil {
		return 0
	}
	n := h.cache.Cache().Len()
	h.cache.Invalidate()
	logging.Info().Int("entries", n).Msg("Query result cache cleared")
	return n
}

// DeleteQueryCache handles DELETE /api/v1/cache so events written by other
// processes show up before the cache TTL expires.
func (h *Handler) DeleteQueryCache(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]int{"cleared": h.ClearCache()}, models.Metadata{})
}

// PerformanceMonitor returns the request latency monitor installed by the router.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

func (h *Handler) breakerState() string {
	if h.breaker == nil {
		return ""
	}
	return h.breaker.State().String()
}

func (h *Handler) breakerOpen() bool {
	return h.breaker != nil && h.breaker.State() == gobreaker.StateOpen
}

// getUpgrader creates a websocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates websocket connection origins against the
// configured CORS origins.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Browsers always send Origin; an empty one would bypass CORS entirely.
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	if h.config == nil {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
