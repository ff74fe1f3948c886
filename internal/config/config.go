// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Infrastructure:
//     - Server: HTTP server configuration (port, host, timeout)
//     - Database: DuckDB event store backing report queries
//     - Store: Badger store for saved report definitions
//
//  2. Query Path:
//     - Cache: LRU result cache in front of the query engine
//     - Breaker: Circuit breaker around the query engine
//
//  3. Reports:
//     - Report: Session behavior (lazy loading, debounce, visible cap)
//     - Live: Websocket refresh of time-sensitive reports
//
//  4. Security and Observability:
//     - Security: CORS origins and rate limiting
//     - Logging: Log levels and output formats
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Store    StoreConfig    `koanf:"store"`
	Cache    CacheConfig    `koanf:"cache"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Report   ReportConfig   `koanf:"report"`
	Live     LiveConfig     `koanf:"live"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging" or "production"
}

// DatabaseConfig holds DuckDB settings for the event store.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // 0 = use NumCPU
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // default true
	SeedDemoData           bool   `koanf:"seed_demo_data"`           // seed sample events into an empty store
}

// StoreConfig holds the saved report store settings.
type StoreConfig struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`

	// GCInterval is how often the value log is compacted. 0 disables it.
	GCInterval     time.Duration `koanf:"gc_interval"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio"`
}

// CacheConfig controls the query result cache.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
}

// BreakerConfig controls the circuit breaker wrapped around the query engine.
type BreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval is the closed-state window after which failure counts reset.
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration `koanf:"timeout"`

	// FailureThreshold is the number of consecutive failures that opens it.
	FailureThreshold uint32 `koanf:"failure_threshold"`
}

// ReportConfig holds report session behavior.
type ReportConfig struct {
	// Lazy keeps new sessions idle until they are enabled by a first refresh.
	Lazy bool `koanf:"lazy"`

	// DebounceWindow delays formula and display-name edits.
	DebounceWindow time.Duration `koanf:"debounce_window"`

	// VisibleCap is the default number of series shown on a fresh chart.
	VisibleCap int `koanf:"visible_cap"`
}

// LiveConfig controls websocket live refresh.
type LiveConfig struct {
	Enabled bool `koanf:"enabled"`

	// Interval is the refresh tick for reports whose range includes now.
	Interval time.Duration `koanf:"interval"`

	// MaxClients caps concurrent websocket subscribers.
	MaxClients int `koanf:"max_clients"`

	// BroadcastRate and BroadcastBurst throttle messages per client.
	BroadcastRate  float64 `koanf:"broadcast_rate"`
	BroadcastBurst int     `koanf:"broadcast_burst"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration for zerolog.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Addr returns the HTTP listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
