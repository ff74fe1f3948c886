// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/tomtom215/reportkit/internal/models"
	"github.com/tomtom215/reportkit/internal/query"
	"github.com/tomtom215/reportkit/internal/session"
)

func TestReportActions_Single(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	id := env.createSignups(t)

	w := env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/actions", `{"type": "changeInterval", "payload": "week"}`)
	expectStatus(t, w, http.StatusOK)

	var out ActionResponse
	resp := decodeResponse(t, w, &out)
	if out.Applied != 1 {
		t.Errorf("Expected 1 applied action, got %d", out.Applied)
	}
	if out.Definition.Interval != models.IntervalWeek {
		t.Errorf("Expected interval week, got %s", out.Definition.Interval)
	}
	if !out.Definition.Dirty {
		t.Error("Expected definition to be dirty after an edit")
	}
	if resp.Metadata.Generation != out.Generation || out.Generation == 0 {
		t.Errorf("Expected matching non-zero generation, got meta=%d body=%d", resp.Metadata.Generation, out.Generation)
	}
}

func TestReportActions_Batch(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	id := env.createSignups(t)

	body := `[
		{"type": "setName", "payload": "Weekly signups"},
		{"type": "changeInterval", "payload": "week"},
		{"type": "changeChartType", "payload": "bar"}
	]`
	w := env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/actions", body)
	expectStatus(t, w, http.StatusOK)

	var out ActionResponse
	decodeResponse(t, w, &out)
	if out.Applied != 3 {
		t.Errorf("Expected 3 applied actions, got %d", out.Applied)
	}
	if out.Definition.Name != "Weekly signups" || out.Definition.ChartType != models.ChartBar {
		t.Errorf("Expected renamed bar chart, got %q/%s", out.Definition.Name, out.Definition.ChartType)
	}
}

func TestReportActions_RejectsWholeBatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"unknown action", `[{"type": "setName", "payload": "x"}, {"type": "explode"}]`},
		{"missing type", `{"payload": "x"}`},
		{"bad payload", `{"type": "setName", "payload": 42}`},
		{"not json", `setName`},
		{"empty", ``},
		{"empty batch", `[]`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := setupTestEnv(t)
			id := env.createSignups(t)

			w := env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/actions", tt.body)
			expectStatus(t, w, http.StatusBadRequest)
			if env.sessions.Len() != 0 {
				t.Error("Expected no session to be opened for a rejected batch")
			}
		})
	}
}

func TestReportActions_UnknownReport(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/v1/reports/ghost/actions", `{"type": "ready"}`)
	expectStatus(t, w, http.StatusNotFound)
}

func TestSaveReport(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	id := env.createSignups(t)
	expectStatus(t, env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/actions", `{"type": "setName", "payload": "Saved name"}`), http.StatusOK)

	w := env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/save", "")
	expectStatus(t, w, http.StatusOK)

	rec, err := env.reports.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Failed to load saved report: %v", err)
	}
	if rec.Definition.Name != "Saved name" {
		t.Errorf("Expected saved name, got %q", rec.Definition.Name)
	}
	sess, _ := env.sessions.Get(id)
	if sess.Definition().Dirty {
		t.Error("Expected session to be clean after save")
	}
}

func TestReportChart(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	id := env.createSignups(t)

	w := env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/chart", "")
	expectStatus(t, w, http.StatusOK)

	var view session.ChartView
	resp := decodeResponse(t, w, &view)
	if view.State != session.StateSuccess {
		t.Fatalf("Expected success state, got %s (%s)", view.State, view.Error)
	}
	if len(view.Rows) != 3 {
		t.Errorf("Expected 3 rows, got %d", len(view.Rows))
	}
	if len(view.Series) != 1 {
		t.Errorf("Expected 1 serie, got %d", len(view.Series))
	}
	if resp.Metadata.Generation != view.Generation {
		t.Errorf("Expected metadata generation %d, got %d", view.Generation, resp.Metadata.Generation)
	}
}

func TestReportChart_SkipRefresh(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	id := env.createSignups(t)

	w := env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/chart", `{"refresh": false}`)
	expectStatus(t, w, http.StatusOK)

	var view session.ChartView
	decodeResponse(t, w, &view)
	if !view.Placeholder {
		t.Error("Expected a placeholder view before any query")
	}
	if n := env.querier.callCount(); n != 0 {
		t.Errorf("Expected no query, got %d", n)
	}
}

func TestReportChart_QueryErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantState  session.State
	}{
		{"breaker open", query.ErrQueryUnavailable, http.StatusServiceUnavailable, ""},
		{"json unavailable", fmt.Errorf("breakdown: %w", query.ErrJSONUnavailable), http.StatusServiceUnavailable, ""},
		{"invalid payload", query.ErrInvalidPayload, http.StatusBadRequest, ""},
		{"other failure rendered as error view", errors.New("disk on fire"), http.StatusOK, session.StateError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := setupTestEnv(t)
			id := env.createSignups(t)
			env.querier.setErr(tt.err)

			w := env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/chart", "")
			expectStatus(t, w, tt.wantStatus)
			if tt.wantState == "" {
				return
			}
			var view session.ChartView
			decodeResponse(t, w, &view)
			if view.State != tt.wantState {
				t.Errorf("Expected state %s, got %s", tt.wantState, view.State)
			}
			if view.Error == "" {
				t.Error("Expected error message in view")
			}
		})
	}
}

func TestReportSummary(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	id := env.createSignups(t)

	w := env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/summary", "")
	expectStatus(t, w, http.StatusBadRequest)
	if resp := decodeResponse(t, w, nil); resp.Error.Code != "NOT_CONVERSION" {
		t.Errorf("Expected NOT_CONVERSION, got %s", resp.Error.Code)
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/actions", `{"type": "changeChartType", "payload": "conversion"}`), http.StatusOK)
	w = env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/summary", "")
	expectStatus(t, w, http.StatusOK)

	var out SummaryResponse
	decodeResponse(t, w, &out)
	if out.State == "" || out.State == session.StateLoading {
		t.Errorf("Expected a committed state, got %q", out.State)
	}
}

func TestToggleSerie(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	id := env.createSignups(t)
	expectStatus(t, env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/chart", ""), http.StatusOK)

	w := env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/visibility", `{"serie_id": "e1"}`)
	expectStatus(t, w, http.StatusOK)

	var out map[string][]string
	decodeResponse(t, w, &out)
	for _, v := range out["visible"] {
		if v == "e1" {
			t.Errorf("Expected e1 hidden, got visible %v", out["visible"])
		}
	}

	expectStatus(t, env.do(t, http.MethodPost, "/api/v1/reports/"+id+"/visibility", `{}`), http.StatusBadRequest)
}

func TestEditItem(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	id := env.createSignups(t)
	path := "/api/v1/reports/" + id + "/series/e1"

	w := env.do(t, http.MethodPatch, path, `{"display_name": "New signups"}`)
	expectStatus(t, w, http.StatusAccepted)
	var out map[string]bool
	decodeResponse(t, w, &out)
	if !out["pending"] {
		t.Error("Expected edit to be pending inside the debounce window")
	}

	w = env.do(t, http.MethodPatch, path, `{"display_name": "Final name", "flush": true}`)
	expectStatus(t, w, http.StatusAccepted)
	out = nil
	decodeResponse(t, w, &out)
	if out["pending"] {
		t.Error("Expected flush to apply pending edits")
	}

	sess, _ := env.sessions.Get(id)
	item, ok := sess.Definition().Series[0].(models.EventItem)
	if !ok {
		t.Fatalf("Expected event item, got %T", sess.Definition().Series[0])
	}
	if item.DisplayName != "Final name" {
		t.Errorf("Expected display name Final name, got %q", item.DisplayName)
	}
}

func TestEditItem_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		item       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"unknown item", "zzz", `{"display_name": "x"}`, http.StatusNotFound, "ITEM_NOT_FOUND"},
		{"nothing to edit", "e1", `{"flush": true}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"formula too long", "e1", fmt.Sprintf(`{"formula": "%0*d"}`, 1001, 0), http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := setupTestEnv(t)
			id := env.createSignups(t)

			w := env.do(t, http.MethodPatch, "/api/v1/reports/"+id+"/series/"+tt.item, tt.body)
			expectStatus(t, w, tt.wantStatus)
			if resp := decodeResponse(t, w, nil); resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("Expected %s, got %+v", tt.wantCode, resp.Error)
			}
		})
	}
}

func TestLiveReport_NoHub(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	id := env.createSignups(t)
	w := env.do(t, http.MethodGet, "/api/v1/reports/"+id+"/live", "")
	expectStatus(t, w, http.StatusServiceUnavailable)
}
