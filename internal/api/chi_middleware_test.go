// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package api

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reportkit/internal/config"
	"github.com/tomtom215/reportkit/internal/logging"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// =====================================================
// ChiMiddleware Configuration Tests
// =====================================================

func TestDefaultChiMiddlewareConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultChiMiddlewareConfig()
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Errorf("Expected no default CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if len(cfg.CORSAllowedMethods) != 6 {
		t.Errorf("Expected 6 allowed methods, got %d", len(cfg.CORSAllowedMethods))
	}
	if cfg.CORSMaxAge != 86400 {
		t.Errorf("Expected CORSMaxAge 86400, got %d", cfg.CORSMaxAge)
	}
	if cfg.RateLimitRequests != 100 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("Expected 100/1m rate limit, got %d/%v", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	if cfg.RateLimitDisabled {
		t.Error("Expected rate limiting enabled by default")
	}
}

func TestNewChiMiddleware_NilConfig(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(nil)
	if m == nil || m.config == nil {
		t.Fatal("Expected default config to be installed")
	}
}

func TestNewChiMiddlewareFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		sec        config.SecurityConfig
		wantReqs   int
		wantWindow time.Duration
	}{
		{
			name:       "explicit limits",
			sec:        config.SecurityConfig{CORSOrigins: []string{"https://a.example"}, RateLimitReqs: 200, RateLimitWindow: 2 * time.Minute},
			wantReqs:   200,
			wantWindow: 2 * time.Minute,
		},
		{
			name:       "zero values keep defaults",
			sec:        config.SecurityConfig{},
			wantReqs:   100,
			wantWindow: time.Minute,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewChiMiddlewareFromConfig(tt.sec)
			if m.config.RateLimitRequests != tt.wantReqs {
				t.Errorf("Expected %d requests, got %d", tt.wantReqs, m.config.RateLimitRequests)
			}
			if m.config.RateLimitWindow != tt.wantWindow {
				t.Errorf("Expected window %v, got %v", tt.wantWindow, m.config.RateLimitWindow)
			}
			if len(m.config.CORSAllowedOrigins) != len(tt.sec.CORSOrigins) {
				t.Errorf("Expected origins %v, got %v", tt.sec.CORSOrigins, m.config.CORSAllowedOrigins)
			}
		})
	}
}

// =====================================================
// CORS Middleware Tests
// =====================================================

func TestChiMiddleware_CORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		wantOrigin  string
		wantHandler bool
	}{
		{"wildcard origin", []string{"*"}, http.MethodGet, "https://example.com", "*", true},
		{"specific origin reflected", []string{"https://allowed.com"}, http.MethodGet, "https://allowed.com", "https://allowed.com", true},
		{"disallowed origin gets no header", []string{"https://allowed.com"}, http.MethodGet, "https://evil.com", "", true},
		{"same origin request", []string{"https://allowed.com"}, http.MethodGet, "", "", true},
		{"preflight short-circuits", []string{"*"}, http.MethodOptions, "https://example.com", "*", false},
		{"preflight from disallowed origin", []string{"https://allowed.com"}, http.MethodOptions, "https://evil.com", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultChiMiddlewareConfig()
			cfg.CORSAllowedOrigins = tt.allowed
			m := NewChiMiddleware(cfg)

			called := false
			handler := m.CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/api/v1/reports", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Expected Access-Control-Allow-Origin %q, got %q", tt.wantOrigin, got)
			}
			if called != tt.wantHandler {
				t.Errorf("Expected handler called=%v, got %v", tt.wantHandler, called)
			}
		})
	}
}

// =====================================================
// Rate Limiting Middleware Tests
// =====================================================

func TestChiMiddleware_RateLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		disabled    bool
		limit       int
		requests    int
		wantLimited int
	}{
		{"enabled", false, 3, 5, 2},
		{"disabled", true, 3, 10, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewChiMiddleware(&ChiMiddlewareConfig{
				RateLimitDisabled: tt.disabled,
				RateLimitRequests: tt.limit,
				RateLimitWindow:   time.Minute,
			})
			handler := m.RateLimit()(http.HandlerFunc(okHandler))

			limited := 0
			for i := 0; i < tt.requests; i++ {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				req.RemoteAddr = "192.168.1.1:12345"
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)
				if w.Code == http.StatusTooManyRequests {
					limited++
				}
			}
			if limited != tt.wantLimited {
				t.Errorf("Expected %d limited requests, got %d", tt.wantLimited, limited)
			}
		})
	}
}

func TestChiMiddleware_RateLimit_DifferentIPs(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitRequests: 2, RateLimitWindow: time.Minute})
	handler := m.RateLimit()(http.HandlerFunc(okHandler))

	for _, ip := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = ip
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Errorf("Expected IP %s request %d to pass, got %d", ip, i, w.Code)
			}
		}
	}
}

func TestChiMiddleware_RateLimitCustom(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitRequests: 100, RateLimitWindow: time.Minute})
	handler := m.RateLimitCustom(RateLimitConfig{Requests: 1, Window: time.Minute})(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "172.16.0.1:5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("Expected [200 429], got %v", codes)
	}

	disabled := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	for _, mw := range []func(http.Handler) http.Handler{
		disabled.RateLimitWrite(), disabled.RateLimitAnalytics(),
		disabled.RateLimitWebSocket(), disabled.RateLimitHealth(),
	} {
		w := httptest.NewRecorder()
		mw(http.HandlerFunc(okHandler)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected disabled limiter to pass, got %d", w.Code)
		}
	}
}

// =====================================================
// Request ID and Security Header Tests
// =====================================================

func TestRequestIDWithLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
	}{
		{"generates id", ""},
		{"keeps client id", "client-request-1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var ctxID string
			handler := RequestIDWithLogging()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = logging.RequestIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			if got == "" {
				t.Fatal("Expected X-Request-ID response header")
			}
			if tt.incoming != "" && got != tt.incoming {
				t.Errorf("Expected request id %q, got %q", tt.incoming, got)
			}
			if ctxID != got {
				t.Errorf("Expected logging context id %q, got %q", got, ctxID)
			}
		})
	}
}

func TestAPISecurityHeaders(t *testing.T) {
	t.Parallel()

	handler := APISecurityHeaders()(http.HandlerFunc(okHandler))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected nosniff header")
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("Expected X-Frame-Options DENY")
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("Expected no HSTS over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("Expected HSTS over TLS")
	}
}

func TestReportContext(t *testing.T) {
	t.Parallel()

	var got string
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(ReportContext())
		r.Get("/reports/{id}", func(w http.ResponseWriter, req *http.Request) {
			got = logging.ReportIDFromContext(req.Context())
			w.WriteHeader(http.StatusOK)
		})
		r.Get("/reports", func(w http.ResponseWriter, req *http.Request) {
			got = logging.ReportIDFromContext(req.Context())
			w.WriteHeader(http.StatusOK)
		})
	})

	tests := []struct {
		path string
		want string
	}{
		{"/reports/signups", "signups"},
		{"/reports", ""},
	}
	for _, tt := range tests {
		got = "unset"
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))
		if got != tt.want {
			t.Errorf("%s: Expected report id %q, got %q", tt.path, tt.want, got)
		}
	}
}
