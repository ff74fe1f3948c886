// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/reportkit/internal/chart"
	"github.com/tomtom215/reportkit/internal/live"
	"github.com/tomtom215/reportkit/internal/logging"
	"github.com/tomtom215/reportkit/internal/models"
	"github.com/tomtom215/reportkit/internal/query"
	"github.com/tomtom215/reportkit/internal/report"
	"github.com/tomtom215/reportkit/internal/session"
)

// maxActionsPerRequest bounds a batch of actions.
const maxActionsPerRequest = 100

// openSession returns the open session for id, loading the saved report
// into a new one when needed.
func (h *Handler) openSession(r *http.Request, id string) (*session.Session, error) {
	if sess, ok := h.sessions.Get(id); ok {
		return sess, nil
	}

	rec, err := h.reports.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}

	sess, created := h.sessions.Open(id, installed(rec.Definition))
	if created {
		if h.hub != nil {
			hub := h.hub
			sess.OnApply(func(def models.ReportDefinition) {
				hub.Publish(id, live.MessageTypeReportChanged, def)
			})
		}
		logging.Ctx(r.Context()).Debug().Str("report_id", id).Msg("Report session opened")
	}
	return sess, nil
}

// ActionResponse is returned after applying actions.
type ActionResponse struct {
	Definition models.ReportDefinition `json:"definition"`
	Generation uint64                  `json:"generation"`
	Applied    int                     `json:"applied"`
}

// decodeActions accepts one envelope or an array of envelopes. Every
// envelope is decoded before any is applied, so a bad batch changes nothing.
func decodeActions(body []byte) ([]report.Action, error) {
	body = bytes.TrimSpace(body)

	var envelopes []report.Envelope
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &envelopes); err != nil {
			return nil, err
		}
	} else {
		var env report.Envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, err
		}
		envelopes = []report.Envelope{env}
	}

	actions := make([]report.Action, 0, len(envelopes))
	for _, env := range envelopes {
		if apiErr := validateRequest(&env); apiErr != nil {
			return nil, errors.New(apiErr.Message)
		}
		action, err := report.DecodeAction(env)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// ReportActions applies reducer actions to the report's session, in order.
//
// Method: POST
// Path: /api/v1/reports/{id}/actions
//
// The body is {"type": "...", "payload": ...} or an array of those.
func (h *Handler) ReportActions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body required", nil)
		return
	}
	actions, err := decodeActions(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", sanitizeLogValue(err.Error()), nil)
		return
	}
	if len(actions) == 0 || len(actions) > maxActionsPerRequest {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST",
			fmt.Sprintf("Between 1 and %d actions are required", maxActionsPerRequest), nil)
		return
	}

	sess, err := h.openSession(r, id)
	if err != nil {
		respondErrorFrom(w, r, err)
		return
	}

	var def models.ReportDefinition
	for _, action := range actions {
		if def, err = sess.Dispatch(action); err != nil {
			respondErrorFrom(w, r, err)
			return
		}
	}

	respondData(w, http.StatusOK, ActionResponse{
		Definition: def,
		Generation: sess.Generation(),
		Applied:    len(actions),
	}, models.Metadata{Generation: sess.Generation()})
}

// SaveReport persists the session's working definition and clears its
// dirty flag.
//
// Method: POST
// Path: /api/v1/reports/{id}/save
func (h *Handler) SaveReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := h.openSession(r, id)
	if err != nil {
		respondErrorFrom(w, r, err)
		return
	}

	sess.FlushEdits()
	rec, err := h.reports.Save(r.Context(), id, sess.Definition())
	if err != nil {
		respondErrorFrom(w, r, err)
		return
	}
	if _, err := sess.Dispatch(report.ResetDirty{}); err != nil {
		respondErrorFrom(w, r, err)
		return
	}
	respondData(w, http.StatusOK, rec, models.Metadata{})
}

// refreshSession runs a refresh and reports whether the caller should stop
// because an error response was written. Query failures other than an
// unavailable or rejected backend are left in the session's error state
// for the view to carry.
func refreshSession(w http.ResponseWriter, r *http.Request, sess *session.Session) bool {
	err := sess.Refresh(r.Context())
	switch {
	case err == nil, errors.Is(err, session.ErrStale):
		return false
	case errors.Is(err, query.ErrQueryUnavailable),
		errors.Is(err, query.ErrJSONUnavailable),
		errors.Is(err, query.ErrInvalidPayload),
		errors.Is(err, session.ErrClosed):
		respondErrorFrom(w, r, err)
		return true
	default:
		logging.CtxErr(r.Context(), err).Str("report_id", sess.ID()).Msg("Chart query failed")
		return false
	}
}

// ReportChart queries the report and returns the rendered chart: rows,
// visible series, dashed strokes and the table view.
//
// Method: POST
// Path: /api/v1/reports/{id}/chart
func (h *Handler) ReportChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ChartRequest
	if apiErr := decodeJSON(r, &req, true); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	sess, err := h.openSession(r, id)
	if err != nil {
		respondErrorFrom(w, r, err)
		return
	}

	start := time.Now()
	if req.Refresh == nil || *req.Refresh {
		if refreshSession(w, r, sess) {
			return
		}
	}
	queryTime := time.Since(start)

	limit := h.visibleCap()
	if req.Edit {
		limit = 0
	}
	if req.Cap != nil {
		limit = *req.Cap
	}

	view := sess.Chart(h.now(), limit)
	respondData(w, http.StatusOK, view, models.Metadata{
		QueryTimeMS: queryTime.Milliseconds(),
		Generation:  view.Generation,
	})
}

// SummaryResponse carries the conversion summary, nil until a conversion
// result is committed.
type SummaryResponse struct {
	State   session.State            `json:"state"`
	Summary *chart.ConversionSummary `json:"summary"`
}

// ReportSummary returns the conversion summary, querying first when no
// result is committed yet.
//
// Method: POST
// Path: /api/v1/reports/{id}/summary
func (h *Handler) ReportSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := h.openSession(r, id)
	if err != nil {
		respondErrorFrom(w, r, err)
		return
	}
	if ct := sess.Definition().ChartType; ct != models.ChartConversion {
		respondErrorFrom(w, r, ErrNotConversion)
		return
	}

	summary, ok := sess.Summary()
	if !ok || getBoolParam(r, "refresh", false) {
		if refreshSession(w, r, sess) {
			return
		}
		summary, ok = sess.Summary()
	}

	out := SummaryResponse{State: sess.State()}
	if ok {
		out.Summary = &summary
	}
	respondData(w, http.StatusOK, out, models.Metadata{Generation: sess.Generation()})
}

// ToggleSerie flips the visibility of one serie.
//
// Method: POST
// Path: /api/v1/reports/{id}/visibility
func (h *Handler) ToggleSerie(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req VisibilityRequest
	if apiErr := decodeJSON(r, &req, false); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	sess, err := h.openSession(r, id)
	if err != nil {
		respondErrorFrom(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string][]string{"visible": sess.ToggleSerie(req.SerieID)}, models.Metadata{})
}

// EditItem schedules debounced edits of a series item.
//
// Method: PATCH
// Path: /api/v1/reports/{id}/series/{itemID}
//
// Response:
//   - 202: edits scheduled (pending reports whether any are still waiting)
//   - 404: unknown report or item
func (h *Handler) EditItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemID")

	var req ItemEditRequest
	if apiErr := decodeJSON(r, &req, false); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	if req.Formula == nil && req.DisplayName == nil {
		respondErrorFrom(w, r, ErrNothingToEdit)
		return
	}

	sess, err := h.openSession(r, id)
	if err != nil {
		respondErrorFrom(w, r, err)
		return
	}

	if req.Formula != nil {
		if err := sess.SetFormula(itemID, *req.Formula); err != nil {
			respondErrorFrom(w, r, err)
			return
		}
	}
	if req.DisplayName != nil {
		if err := sess.SetDisplayName(itemID, *req.DisplayName); err != nil {
			respondErrorFrom(w, r, err)
			return
		}
	}
	if req.Flush {
		sess.FlushEdits()
	}

	respondData(w, http.StatusAccepted, map[string]bool{"pending": sess.PendingEdits()}, models.Metadata{})
}
