// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package models defines the data structures shared by the report state machine,
the query layer and the chart pipeline.

Key Components:

  - ReportDefinition: the persistable report configuration
  - SeriesItem: tagged union of EventItem and FormulaItem
  - Options: tagged union of FunnelOptions, RetentionOptions, SankeyOptions
    and HistogramOptions, one variant per chart family
  - AggregationResult: formatted time-series query output (Serie, DataPoint)
  - RawResult: unformatted query output consumed by chart.FormatResult
  - Funnel, conversion, retention and sankey result shapes

JSON Encoding:

Tagged unions encode with a "type" field and decode by inspecting it first.
All encoding goes through github.com/goccy/go-json.

	{"chart_type":"sankey","options":{"type":"sankey","mode":"after","steps":5,"exclude":[]}}

Thread Safety:

Models are plain values. ReportDefinition.Clone returns a copy that shares no
slices with the original, which the reducer relies on to stay pure.
*/
package models
