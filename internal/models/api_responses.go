// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package models

import (
	"time"
)

// APIResponse is the envelope of every HTTP response.
//
// Status is "success" (see Data) or "error" (see Error).
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"id": "signups", "definition": {...}},
//	  "metadata": {"timestamp": "2026-03-10T12:00:00Z", "query_time_ms": 45}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "Interval must be one of: minute hour day week month",
//	    "details": {"field": "Interval", "tag": "interval"}
//	  },
//	  "metadata": {"timestamp": "2026-03-10T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing. QueryTimeMS is set by endpoints that
// ran a query; Cached marks results served from the result cache.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	Generation  uint64    `json:"generation,omitempty"`
}

// APIError is the typed error body.
//
// Common error codes:
//   - VALIDATION_ERROR: request body failed validation
//   - INVALID_REQUEST: malformed JSON or unknown action
//   - NOT_FOUND: no saved report with that id
//   - QUERY_UNAVAILABLE: the query backend is down or its breaker is open
//   - INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	StoreConnected    bool    `json:"store_connected"`
	QueryBreaker      string  `json:"query_breaker,omitempty"`
	OpenSessions      int     `json:"open_sessions"`
	LiveClients       int     `json:"live_clients"`
	Uptime            float64 `json:"uptime_seconds"`
}
