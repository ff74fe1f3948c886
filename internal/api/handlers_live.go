// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reportkit/internal/live"
	"github.com/tomtom215/reportkit/internal/logging"
)

// LiveReport upgrades to a websocket subscribed to one report. The client
// receives report_changed after every action and chart_updated whenever
// the refresher re-queries a live date range.
//
// Method: GET
// Path: /api/v1/reports/{id}/live
func (h *Handler) LiveReport(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		logging.Warn().Msg("WebSocket connection rejected: live hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Live updates unavailable", nil)
		return
	}
	if h.hub.Full() {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Too many live clients", nil)
		return
	}

	id := chi.URLParam(r, "id")
	sess, err := h.openSession(r, id)
	if err != nil {
		respondErrorFrom(w, r, err)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := live.NewClient(h.hub, conn, id)
	h.hub.Register <- client
	client.Start()

	h.hub.Publish(id, live.MessageTypeChartUpdated, sess.Chart(h.now(), h.visibleCap()))
}
