// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package config provides centralized configuration management for ReportKit.

Configuration is loaded with Koanf v2 in three layers, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: config.yaml, config.yml or /etc/reportkit/config.yaml.
    CONFIG_PATH overrides the search.
 3. Environment variables, mapped explicitly to config paths.
    Unmapped variables are ignored.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default 3858), HTTP_TIMEOUT, ENVIRONMENT

Event store (DuckDB):
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS, DUCKDB_PRESERVE_INSERTION_ORDER,
    SEED_DEMO_DATA

Report store (Badger):
  - STORE_PATH, STORE_IN_MEMORY

Query path:
  - CACHE_ENABLED, CACHE_CAPACITY, CACHE_TTL
  - BREAKER_ENABLED, BREAKER_MAX_REQUESTS, BREAKER_INTERVAL, BREAKER_TIMEOUT,
    BREAKER_FAILURE_THRESHOLD

Reports and live refresh:
  - REPORT_LAZY, REPORT_DEBOUNCE_WINDOW, REPORT_VISIBLE_CAP
  - LIVE_ENABLED, LIVE_INTERVAL, LIVE_MAX_CLIENTS, LIVE_BROADCAST_RATE,
    LIVE_BROADCAST_BURST

Security and logging:
  - CORS_ORIGINS (comma-separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW,
    DISABLE_RATE_LIMIT
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	addr := cfg.Server.Addr()

Validation errors name the environment variable to fix.
*/
package config
