// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 3858 {
		t.Errorf("Server.Port = %d, want 3858", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Database.MaxMemory != "1GB" {
		t.Errorf("Database.MaxMemory = %q, want 1GB", cfg.Database.MaxMemory)
	}
	if !cfg.Database.PreserveInsertionOrder {
		t.Error("Database.PreserveInsertionOrder should be true by default")
	}
	if !cfg.Cache.Enabled || cfg.Cache.Capacity != 512 || cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Unexpected cache defaults %+v", cfg.Cache)
	}
	if cfg.Breaker.FailureThreshold != 5 {
		t.Errorf("Breaker.FailureThreshold = %d, want 5", cfg.Breaker.FailureThreshold)
	}
	if cfg.Report.VisibleCap != 4 {
		t.Errorf("Report.VisibleCap = %d, want 4", cfg.Report.VisibleCap)
	}
	if cfg.Live.Interval != time.Minute {
		t.Errorf("Live.Interval = %v, want 1m", cfg.Live.Interval)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Unexpected logging defaults %+v", cfg.Logging)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"STORE_IN_MEMORY", "store.in_memory"},
		{"CACHE_TTL", "cache.ttl"},
		{"BREAKER_FAILURE_THRESHOLD", "breaker.failure_threshold"},
		{"REPORT_DEBOUNCE_WINDOW", "report.debounce_window"},
		{"LIVE_INTERVAL", "live.interval"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 1\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("Expected %q, got %q", path, got)
	}

	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	if got := findConfigFile(); got != "" {
		t.Errorf("Expected no config file, got %q", got)
	}
}

// isolate points CONFIG_PATH at an empty directory so no stray config file loads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "none.yaml"))
	return dir
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("BREAKER_ENABLED", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Cache.TTL = %v, want 30s", cfg.Cache.TTL)
	}
	if cfg.Breaker.Enabled {
		t.Error("Breaker.Enabled should be false")
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("Security.CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}

	// Defaults still apply for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	dir := t.TempDir()
	configContent := `
server:
  port: 8888
  host: "127.0.0.1"
store:
  in_memory: true
live:
  interval: 10s
logging:
  level: "warn"
`
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8888 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Unexpected server config %+v", cfg.Server)
	}
	if !cfg.Store.InMemory {
		t.Error("Store.InMemory should be true from file")
	}
	if cfg.Live.Interval != 10*time.Second {
		t.Errorf("Live.Interval = %v, want 10s", cfg.Live.Interval)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Database.Path != "/data/reportkit.duckdb" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 8888\n"), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("HTTP_PORT", "7777")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 (env wins)", cfg.Server.Port)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		errContains string
	}{
		{"bad port", map[string]string{"HTTP_PORT": "70000"}, "HTTP_PORT"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"bad environment", map[string]string{"ENVIRONMENT": "qa"}, "ENVIRONMENT"},
		{"zero cache capacity", map[string]string{"CACHE_CAPACITY": "0"}, "CACHE_CAPACITY"},
		{"fast live interval", map[string]string{"LIVE_INTERVAL": "10ms"}, "LIVE_INTERVAL"},
		{"wildcard cors in production", map[string]string{"ENVIRONMENT": "production"}, "CORS_ORIGINS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadWithKoanf()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Expected error containing %q, got %v", tt.errContains, err)
			}
		})
	}
}
