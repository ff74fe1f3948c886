// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package query computes report results from the event store.

A report definition is projected into a Payload with its date range
resolved to half-open UTC bounds. Queriers turn payloads into results:

	engine := query.NewDuckDBEngine(db)
	var q query.Querier = query.NewCachedQuerier(
	    query.NewBreakerQuerier(engine, cfg.Breaker),
	    cfg.Cache,
	)
	result, err := q.Query(ctx, query.PayloadFrom(def, time.Now()))

# Families

  - Query: bucketed time series per event item, with breakdowns, formulas
    and an optional previous period of equal length
  - Funnel: ordered step completion within a window, per session or profile
  - Conversion: first-to-last event conversion rate per bucket
  - Retention: cohorts by first event bucket with returns per period
  - Sankey: journeys before, after or between anchor events

Time series are gap filled so every serie has a point per bucket, which
keeps the previous-period join by position aligned.

# Errors

ErrInvalidPayload marks payloads that can never succeed and does not trip
the circuit breaker. ErrQueryUnavailable is returned while the breaker is
open. Errors are never cached.
*/
package query
