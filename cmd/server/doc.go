// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package main is the entry point for the ReportKit server.

ReportKit keeps report definitions (series, breakdowns, interval, range,
chart type), runs them against a DuckDB event store and serves chart-ready
series over HTTP and websockets.

# Application Architecture

	reportkit (root)
	├── data-layer
	│   └── store-gc (Badger value log compaction)
	├── live-layer
	│   ├── live-hub (websocket subscribers)
	│   └── live-refresher (re-queries reports over live ranges)
	└── api-layer
	    └── http-server (chi router)

Initialization order:

 1. Configuration: Koanf v2 defaults, config.yaml, environment
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Event store: DuckDB, optionally seeded with demo events
 4. Report store: Badger
 5. Query chain: DuckDB engine, circuit breaker, LRU result cache
 6. Sessions, live hub and refresher
 7. HTTP handler and router
 8. Supervisor tree, then signal handling

# Configuration

Common environment variables:

	HTTP_PORT=3858
	DUCKDB_PATH=/data/reportkit.duckdb
	STORE_PATH=/data/reports
	REPORT_DEBOUNCE_WINDOW=300ms
	LIVE_ENABLED=true
	LOG_LEVEL=info

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
to 10s, open sessions are closed, then the report store and event store.

# Example

	export STORE_IN_MEMORY=true
	export SEED_DEMO_DATA=true
	export DUCKDB_PATH=/tmp/reportkit.duckdb
	./reportkit
*/
package main
