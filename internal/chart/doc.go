// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

// Package chart turns query output into render-ready structures.
//
// The time-series pipeline is FormatResult, then Select for visibility,
// then Transform into date-indexed rows, with a StrokeCalculator marking
// the still-accumulating tail of each serie. Funnel, conversion, sankey and
// retention results have their own helpers. Every division in this package
// is guarded and yields 0 instead of NaN or Inf.
package chart
