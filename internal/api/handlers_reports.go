// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/reportkit/internal/logging"
	"github.com/tomtom215/reportkit/internal/models"
	"github.com/tomtom215/reportkit/internal/report"
	"github.com/tomtom215/reportkit/internal/session"
	"github.com/tomtom215/reportkit/internal/store"
)

// ReportView is a saved report plus, when a session is open, its working
// copy and result state.
type ReportView struct {
	store.Record
	Working *models.ReportDefinition `json:"working,omitempty"`
	State   session.State            `json:"state,omitempty"`
}

// installed normalizes a client definition the way loading a saved report does.
func installed(def models.ReportDefinition) models.ReportDefinition {
	return report.Apply(report.Initial(), report.SetReport{Report: report.FromPersisted(def)})
}

// ReportList is one page of saved reports.
type ReportList struct {
	Reports []store.Record `json:"reports"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	HasMore bool           `json:"has_more"`
}

// ListReports returns saved reports, most recently updated first.
//
// Method: GET
// Path: /api/v1/reports
//
// Query parameters:
//   - limit: page size (1-1000, default 100)
//   - offset: reports to skip
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	req := ListReportsRequest{
		Limit:  getIntParam(r, "limit", 100),
		Offset: getIntParam(r, "offset", 0),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	records, err := h.reports.List(r.Context())
	if err != nil {
		respondErrorFrom(w, r, err)
		return
	}

	page := ReportList{Reports: []store.Record{}, Total: len(records), Limit: req.Limit, Offset: req.Offset}
	if req.Offset < len(records) {
		end := req.Offset + req.Limit
		if end > len(records) {
			end = len(records)
		}
		page.Reports = records[req.Offset:end]
		page.HasMore = end < len(records)
	}
	respondData(w, http.StatusOK, page, models.Metadata{})
}

// CreateReport validates and saves a new report.
//
// Method: POST
// Path: /api/v1/reports
//
// Response:
//   - 201: report created
//   - 400: invalid JSON or validation failure
//   - 409: a report with that id already exists
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if apiErr := decodeJSON(r, &req, false); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	if _, err := h.reports.Get(r.Context(), req.ID); err == nil {
		respondErrorFrom(w, r, ErrReportExists)
		return
	}

	rec, err := h.reports.Save(r.Context(), req.ID, installed(req.Definition))
	if err != nil {
		respondErrorFrom(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("report_id", sanitizeLogValue(rec.ID)).
		Str("chart_type", string(rec.Definition.ChartType)).
		Msg("Report created")
	respondData(w, http.StatusCreated, rec, models.Metadata{})
}

// GetReport returns a saved report.
//
// Method: GET
// Path: /api/v1/reports/{id}
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.reports.Get(r.Context(), id)
	if err != nil {
		respondErrorFrom(w, r, err)
		return
	}

	view := ReportView{Record: rec}
	if sess, ok := h.sessions.Get(id); ok {
		working := sess.Definition()
		view.Working = &working
		view.State = sess.State()
	}
	respondData(w, http.StatusOK, view, models.Metadata{})
}

// ReplaceReport overwrites a saved report. An open session is reset to the
// new definition.
//
// Method: PUT
// Path: /api/v1/reports/{id}
func (h *Handler) ReplaceReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ReportRequest
	if apiErr := decodeJSON(r, &req, false); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	req.ID = id
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	if _, err := h.reports.Get(r.Context(), id); err != nil {
		respondErrorFrom(w, r, err)
		return
	}

	def := installed(req.Definition)
	rec, err := h.reports.Save(r.Context(), id, def)
	if err != nil {
		respondErrorFrom(w, r, err)
		return
	}

	if sess, ok := h.sessions.Get(id); ok {
		if _, err := sess.Dispatch(report.SetReport{Report: def}); err != nil {
			logging.CtxErr(r.Context(), err).Str("report_id", id).Msg("Failed to reset open session")
		}
	}
	respondData(w, http.StatusOK, rec, models.Metadata{})
}

// DeleteReport removes a saved report and closes its session.
//
// Method: DELETE
// Path: /api/v1/reports/{id}
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.reports.Delete(r.Context(), id); err != nil {
		respondErrorFrom(w, r, err)
		return
	}
	h.sessions.Close(id)

	logging.Ctx(r.Context()).Info().Str("report_id", sanitizeLogValue(id)).Msg("Report deleted")
	respondData(w, http.StatusOK, map[string]string{"id": id}, models.Metadata{})
}
