// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package api provides the HTTP REST API layer for ReportKit.

Saved reports live in the store; an open report is a session that owns the
working definition, applies reducer actions in order and holds the last
query result. Handlers open sessions lazily on first use.

Routes:

	GET    /api/v1/health                       dependency status
	GET    /api/v1/health/live                  liveness probe
	GET    /api/v1/health/ready                 readiness probe (503 until DuckDB and badger answer)
	GET    /api/v1/health/performance           per-route latency percentiles, cache counters
	GET    /api/v1/reports                      list saved reports (limit, offset)
	POST   /api/v1/reports                      create
	GET    /api/v1/reports/{id}                 saved definition plus open working copy
	PUT    /api/v1/reports/{id}                 replace; resets an open session
	DELETE /api/v1/reports/{id}                 delete and close the session
	POST   /api/v1/reports/{id}/actions         apply one action or an array of actions
	POST   /api/v1/reports/{id}/save            persist the working copy, clear dirty
	POST   /api/v1/reports/{id}/chart           query and render rows, series, dashes
	POST   /api/v1/reports/{id}/summary         conversion summary
	POST   /api/v1/reports/{id}/visibility      toggle one serie
	PATCH  /api/v1/reports/{id}/series/{itemID} debounced formula and display-name edits
	GET    /api/v1/reports/{id}/live            websocket subscription
	DELETE /api/v1/cache                        drop cached query results
	GET    /metrics                             Prometheus scrape endpoint

Responses use the models.APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "...", "generation": 4}}
	{"status": "error", "error": {"code": "NOT_FOUND", "message": "Report not found"}}

Error codes map from domain errors in classifyError: NOT_FOUND and
ITEM_NOT_FOUND (404), INVALID_REQUEST, INVALID_ID, INVALID_QUERY,
NOT_CONVERSION and VALIDATION_ERROR (400), CONFLICT (409),
QUERY_UNAVAILABLE and SERVICE_UNAVAILABLE (503), TIMEOUT (504).

Middleware:

Every route gets a request id wired into the zerolog context, real-IP
extraction, panic recovery, CORS and the latency monitor. Report routes
add security headers, Prometheus request metrics labelled by route
pattern, gzip for JSON bodies and per-class rate limits (write, analytics,
websocket) via go-chi/httprate.

Usage Example:

	handler := api.NewHandler(reports, sessions, cfg, hub)
	handler.SetDatabase(db)
	handler.SetQueryChain(cached, breaker)
	router := api.NewRouter(handler, cfg.Security)
	http.ListenAndServe(":3857", router.SetupChi())
*/
package api
