// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

// Package store persists saved report definitions in BadgerDB.
//
// Each report is one JSON record under the key "report:<id>". Definitions
// are stripped of their session-local ready and dirty flags on save, and
// normalized with report.FromPersisted on load so records written under
// older interval or options rules come back legal.
package store
