// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reportkit/internal/config"
	"github.com/tomtom215/reportkit/internal/logging"
	"github.com/tomtom215/reportkit/internal/models"
	"github.com/tomtom215/reportkit/internal/query"
	"github.com/tomtom215/reportkit/internal/session"
	"github.com/tomtom215/reportkit/internal/store"
)

func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

var apiNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

// stubQuerier returns three daily points per query and counts calls.
type stubQuerier struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubQuerier) hit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *stubQuerier) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubQuerier) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *stubQuerier) Query(context.Context, query.Payload) (*models.AggregationResult, error) {
	if err := s.hit(); err != nil {
		return nil, err
	}
	serie := models.Serie{ID: "e1", Names: []string{"signup"}}
	for i, c := range []float64{3, 5, 8} {
		serie.Data = append(serie.Data, models.DataPoint{
			Date:  time.Date(2026, 3, 8+i, 0, 0, 0, 0, time.UTC),
			Count: c,
		})
		serie.Metrics.Sum += c
	}
	return &models.AggregationResult{Series: []models.Serie{serie}}, nil
}

func (s *stubQuerier) Funnel(context.Context, query.Payload) (*models.FunnelComparison, error) {
	return &models.FunnelComparison{}, s.hit()
}

func (s *stubQuerier) Conversion(context.Context, query.Payload) (*models.ConversionResult, error) {
	if err := s.hit(); err != nil {
		return nil, err
	}
	return &models.ConversionResult{}, nil
}

func (s *stubQuerier) Retention(context.Context, query.Payload) ([]models.RetentionCohort, error) {
	return nil, s.hit()
}

func (s *stubQuerier) Sankey(context.Context, query.Payload) (*models.SankeyResult, error) {
	return &models.SankeyResult{}, s.hit()
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	handler  *Handler
	server   http.Handler
	reports  *store.BadgerStore
	sessions *session.Manager
	querier  *stubQuerier
}

// setupTestEnv builds a handler over an in-memory store and a stub querier,
// routed through the real chi router with rate limiting disabled.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	reports, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = reports.Close() })

	q := &stubQuerier{}
	sessions := session.NewManager(q, session.Options{
		DebounceWindow: time.Hour,
		Now:            func() time.Time { return apiNow },
	})
	t.Cleanup(sessions.CloseAll)

	cfg := &config.Config{
		Security: config.SecurityConfig{CORSOrigins: []string{"*"}, RateLimitDisabled: true},
		Report:   config.ReportConfig{VisibleCap: 4},
	}
	h := NewHandler(reports, sessions, cfg, nil)
	h.now = func() time.Time { return apiNow }

	return &testEnv{
		handler:  h,
		server:   NewRouter(h, cfg.Security).SetupChi(),
		reports:  reports,
		sessions: sessions,
		querier:  q,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "127.0.0.1:40000"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

// testResponse mirrors models.APIResponse with the payload left raw.
type testResponse struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data interface{}) testResponse {
	t.Helper()
	var resp testResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	if data != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, data); err != nil {
			t.Fatalf("Failed to decode data %q: %v", string(resp.Data), err)
		}
	}
	return resp
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

const signupReport = `{
	"id": "signups",
	"definition": {
		"name": "Signups",
		"chart_type": "linear",
		"interval": "day",
		"range": "7d",
		"metric": "sum",
		"limit": 100,
		"series": [{"type": "event", "id": "e1", "name": "signup", "segment": "event", "filters": []}],
		"breakdowns": []
	}
}`

// createSignups saves the fixture report and returns its id.
func (e *testEnv) createSignups(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/reports", signupReport)
	expectStatus(t, w, http.StatusCreated)
	return "signups"
}
