// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/reportkit/internal/cache"
	"github.com/tomtom215/reportkit/internal/middleware"
	"github.com/tomtom215/reportkit/internal/models"
)

type storePinger interface {
	Ping() error
}

func (h *Handler) dbConnected(r *http.Request) bool {
	return h.db != nil && h.db.Ping(r.Context()) == nil
}

func (h *Handler) storeConnected() bool {
	if h.reports == nil {
		return false
	}
	if p, ok := h.reports.(storePinger); ok {
		return p.Ping() == nil
	}
	return true
}

// Health reports dependency status. A missing database or store, or an
// open query breaker, makes the service "degraded" but still answers 200.
//
// Method: GET
// Path: /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbOK := h.dbConnected(r)
	storeOK := h.storeConnected()

	status := "healthy"
	if !dbOK || !storeOK || h.breakerOpen() {
		status = "degraded"
	}

	liveClients := 0
	if h.hub != nil {
		liveClients = h.hub.ClientCount()
	}
	openSessions := 0
	if h.sessions != nil {
		openSessions = h.sessions.Len()
	}

	respondData(w, http.StatusOK, models.HealthStatus{
		Status:            status,
		Version:           Version,
		DatabaseConnected: dbOK,
		StoreConnected:    storeOK,
		QueryBreaker:      h.breakerState(),
		OpenSessions:      openSessions,
		LiveClients:       liveClients,
		Uptime:            time.Since(h.startTime).Seconds(),
	}, models.Metadata{})
}

// HealthLive answers 200 whenever the process is running.
//
// Method: GET
// Path: /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, models.Metadata{})
}

// HealthReady answers 200 only when the query database and the report
// store are both reachable, 503 otherwise.
//
// Method: GET
// Path: /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbOK := h.dbConnected(r)
	storeOK := h.storeConnected()
	ready := dbOK && storeOK

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondData(w, statusCode, map[string]interface{}{
		"status":             status,
		"database_connected": dbOK,
		"store_connected":    storeOK,
	}, models.Metadata{})
}

// PerformanceStats is the body of the performance endpoint.
type PerformanceStats struct {
	Endpoints []middleware.EndpointStats `json:"endpoints"`
	Cache     *cache.Stats               `json:"cache,omitempty"`
	HitRate   float64                    `json:"cache_hit_rate"`
}

// HealthPerformance returns per-route latency percentiles and result cache counters.
//
// Method: GET
// Path: /api/v1/health/performance
func (h *Handler) HealthPerformance(w http.ResponseWriter, r *http.Request) {
	out := PerformanceStats{Endpoints: h.perfMon.GetStats()}
	if h.cache != nil {
		stats := h.cache.Cache().Stats()
		out.Cache = &stats
		out.HitRate = stats.HitRate()
	}
	respondData(w, http.StatusOK, out, models.Metadata{})
}
