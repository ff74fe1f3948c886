// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package metrics defines the Prometheus collectors exposed on /metrics.

Collectors are registered with promauto at package init. Callers use the
Record* helpers rather than touching collectors directly:

	start := time.Now()
	res, err := engine.Query(ctx, payload)
	metrics.RecordQuery("series", time.Since(start), err)

Covered areas: reducer actions, session refresh outcomes, chart pipeline
transforms, query latency and errors, result cache efficiency, circuit
breaker state, API requests and live websocket clients.
*/
package metrics
