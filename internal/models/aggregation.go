// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package models

import "time"

// PreviousState is the direction of change against the previous period.
type PreviousState string

const (
	PreviousPositive PreviousState = "positive"
	PreviousNegative PreviousState = "negative"
	PreviousNeutral  PreviousState = "neutral"
)

// PreviousValue is a previous-period value with its percentage difference.
// Diff is nil when the values are equal or the ratio is undefined.
type PreviousValue struct {
	Value float64       `json:"value"`
	Diff  *float64      `json:"diff"`
	State PreviousState `json:"state"`
}

// DataPoint is one bucket of a time series.
type DataPoint struct {
	Date     time.Time      `json:"date"`
	Count    float64        `json:"count"`
	Previous *PreviousValue `json:"previous,omitempty"`
}

// PreviousMetrics holds previous-period comparisons for each aggregate.
type PreviousMetrics struct {
	Sum     *PreviousValue `json:"sum,omitempty"`
	Average *PreviousValue `json:"average,omitempty"`
	Min     *PreviousValue `json:"min,omitempty"`
	Max     *PreviousValue `json:"max,omitempty"`
	Count   *PreviousValue `json:"count,omitempty"`
}

// SerieMetrics are aggregates over a serie's points.
type SerieMetrics struct {
	Sum      float64          `json:"sum"`
	Average  float64          `json:"average"`
	Min      float64          `json:"min"`
	Max      float64          `json:"max"`
	Count    float64          `json:"count"`
	Previous *PreviousMetrics `json:"previous,omitempty"`
}

// Value returns the aggregate selected by m. Unknown metrics select Sum.
func (m SerieMetrics) Value(metric Metric) float64 {
	switch metric {
	case MetricAverage:
		return m.Average
	case MetricMin:
		return m.Min
	case MetricMax:
		return m.Max
	case MetricCount:
		return m.Count
	}
	return m.Sum
}

// SerieEvent identifies the series item a serie was computed from.
type SerieEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Serie is one rendered line, bar or slice.
type Serie struct {
	ID string `json:"id"`
	// Names is the label path: the event label followed by breakdown values.
	Names []string   `json:"names"`
	Event SerieEvent `json:"event"`
	// Index is a stable identity slot used for color assignment.
	Index   int          `json:"index"`
	Data    []DataPoint  `json:"data"`
	Metrics SerieMetrics `json:"metrics"`
}

// AggregationResult is the output of a time-series query.
type AggregationResult struct {
	Series  []Serie      `json:"series"`
	Metrics SerieMetrics `json:"metrics"`
}

// Empty reports whether the result has no series or no points at all.
func (r *AggregationResult) Empty() bool {
	if r == nil {
		return true
	}
	for _, s := range r.Series {
		if len(s.Data) > 0 {
			return false
		}
	}
	return true
}

// RawSerie is an unformatted per-serie query output before metrics and
// previous-period matching are applied.
type RawSerie struct {
	ID string `json:"id"`
	// DefinitionIndex is the position of the originating series item.
	DefinitionIndex int        `json:"definition_index"`
	Event           SerieEvent `json:"event"`
	// Breakdowns are the breakdown values, empty when not broken down.
	Breakdowns []string    `json:"breakdowns"`
	Data       []DataPoint `json:"data"`
	// TotalCount is the distinct count over the whole window, when the query computes one.
	TotalCount float64 `json:"total_count,omitempty"`
}

// RawResult is the unformatted output of a time-series query.
type RawResult struct {
	Current  []RawSerie `json:"current"`
	Previous []RawSerie `json:"previous,omitempty"`
}
