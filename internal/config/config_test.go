// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidateRateLimits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		requests    int
		window      time.Duration
		disabled    bool
		errContains string
	}{
		{name: "valid defaults", requests: 100, window: time.Minute},
		{name: "valid minimum requests", requests: 1, window: time.Minute},
		{name: "valid maximum window", requests: 100, window: time.Hour},
		{name: "invalid zero requests", requests: 0, window: time.Minute, errContains: "RATE_LIMIT_REQUESTS"},
		{name: "invalid huge requests", requests: 100001, window: time.Minute, errContains: "RATE_LIMIT_REQUESTS"},
		{name: "invalid short window", requests: 100, window: time.Millisecond, errContains: "RATE_LIMIT_WINDOW"},
		{name: "disabled skips checks", requests: 0, window: 0, disabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			cfg.Security.RateLimitReqs = tt.requests
			cfg.Security.RateLimitWindow = tt.window
			cfg.Security.RateLimitDisabled = tt.disabled

			err := cfg.validateRateLimits()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Expected error containing %q, got %v", tt.errContains, err)
			}
		})
	}
}

func TestValidate_Sections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{"disabled cache skips checks", func(c *Config) { c.Cache.Enabled = false; c.Cache.Capacity = 0 }, ""},
		{"cache ttl", func(c *Config) { c.Cache.TTL = 0 }, "CACHE_TTL"},
		{"breaker threshold", func(c *Config) { c.Breaker.FailureThreshold = 0 }, "BREAKER_FAILURE_THRESHOLD"},
		{"disabled breaker skips checks", func(c *Config) { c.Breaker.Enabled = false; c.Breaker.Timeout = 0 }, ""},
		{"in-memory store needs no path", func(c *Config) { c.Store.InMemory = true; c.Store.Path = "" }, ""},
		{"store path", func(c *Config) { c.Store.Path = "" }, "STORE_PATH"},
		{"negative gc interval", func(c *Config) { c.Store.GCInterval = -time.Second }, "STORE_GC_INTERVAL"},
		{"gc ratio out of range", func(c *Config) { c.Store.GCDiscardRatio = 1 }, "STORE_GC_DISCARD_RATIO"},
		{"gc ratio ignored when disabled", func(c *Config) { c.Store.GCInterval = 0; c.Store.GCDiscardRatio = 0 }, ""},
		{"visible cap", func(c *Config) { c.Report.VisibleCap = 0 }, "REPORT_VISIBLE_CAP"},
		{"live burst", func(c *Config) { c.Live.BroadcastBurst = 0 }, "LIVE_BROADCAST"},
		{"duckdb threads", func(c *Config) { c.Database.Threads = -1 }, "DUCKDB_THREADS"},
		{"production with origins", func(c *Config) {
			c.Server.Environment = "production"
			c.Security.CORSOrigins = []string{"https://reports.example"}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Expected error containing %q, got %v", tt.errContains, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		cfg := defaultConfig()
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			t.Errorf("Expected level %q to be valid, got %v", level, err)
		}
	}
}

func TestServerAddr(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8080
	if got := cfg.Server.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Expected 127.0.0.1:8080, got %q", got)
	}
	if cfg.IsProduction() {
		t.Error("Expected development by default")
	}
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("Expected a CORS warning for wildcard origins")
	}
}
