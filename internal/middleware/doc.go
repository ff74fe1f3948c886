// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package middleware provides HTTP instrumentation for the report API.

  - PrometheusMetrics: request counts, latency and in-flight gauge
  - PerformanceMonitor: a sliding window of request latencies with
    per-route percentiles, served by the health endpoint

Both label requests by their chi route pattern ("/api/v1/reports/{id}/chart")
rather than the raw path, so report ids never become metric labels.

Usage:

	perfMon := middleware.NewPerformanceMonitor(1000)
	r := chi.NewRouter()
	r.Use(perfMon.Middleware)
	r.Use(func(next http.Handler) http.Handler {
	    return middleware.PrometheusMetrics(next.ServeHTTP)
	})
*/
package middleware
