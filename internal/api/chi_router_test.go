// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRouterSetup_Routes(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.createSignups(t)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{http.MethodGet, "/api/v1/health/live", "", http.StatusOK},
		{http.MethodGet, "/api/v1/health/performance", "", http.StatusOK},
		{http.MethodGet, "/api/v1/reports", "", http.StatusOK},
		{http.MethodGet, "/api/v1/reports/signups", "", http.StatusOK},
		{http.MethodPost, "/api/v1/reports/signups/chart", "", http.StatusOK},
		{http.MethodPost, "/api/v1/reports/signups/actions", `{"type": "ready"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/reports/signups/save", "", http.StatusOK},
		{http.MethodPatch, "/api/v1/reports/signups/series/e1", `{"display_name": "x"}`, http.StatusAccepted},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/v1/nope", "", http.StatusNotFound},
		{http.MethodPatch, "/api/v1/reports/signups", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestRouterSetup_Headers(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.createSignups(t)

	w := env.do(t, http.MethodGet, "/api/v1/reports/signups", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID on every response")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected security headers on report routes")
	}
}

func TestRouterSetup_CORSPreflight(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/reports/signups/series/e1", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Expected wildcard CORS origin, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch) {
		t.Errorf("Expected PATCH to be allowed, got %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestRouterSetup_Compression(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	env.createSignups(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Errorf("Expected gzip encoding, got %q", w.Header().Get("Content-Encoding"))
	}
}
