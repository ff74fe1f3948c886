// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package cache provides a generic LRU cache with TTL expiration.

The query layer keeps formatted report results here, keyed by a hash of the
query payload:

	results := cache.NewLRU[*models.AggregationResult](cfg.Cache.Capacity, cfg.Cache.TTL)
	results.Add(key, result)
	if r, ok := results.Get(key); ok {
	    return r, nil
	}

Expired entries are dropped lazily on Get, or in bulk by CleanupExpired.
All methods are safe for concurrent use.
*/
package cache
