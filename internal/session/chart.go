// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package session

import (
	"time"

	"github.com/tomtom215/reportkit/internal/chart"
	"github.com/tomtom215/reportkit/internal/metrics"
	"github.com/tomtom215/reportkit/internal/models"
	"github.com/tomtom215/reportkit/internal/query"
)

// ChartView is everything a client needs to render the report. Only the
// fields of the committed family are set. While idle or loading the view
// is a placeholder with empty collections.
type ChartView struct {
	ReportID    string           `json:"report_id"`
	State       State            `json:"state"`
	Placeholder bool             `json:"placeholder"`
	Family      string           `json:"family"`
	ChartType   models.ChartType `json:"chart_type"`
	Interval    models.Interval  `json:"interval"`
	Generation  uint64           `json:"generation"`
	UpdatedAt   *time.Time       `json:"updated_at,omitempty"`
	Error       string           `json:"error,omitempty"`

	Rows    []chart.RechartRow `json:"rows"`
	Series  []models.Serie     `json:"series"`
	Visible []string           `json:"visible"`
	Dashes  []chart.StrokeDash `json:"dashes"`
	Table   *chart.Table       `json:"table,omitempty"`

	Funnel     *models.FunnelComparison  `json:"funnel,omitempty"`
	Conversion *models.ConversionResult  `json:"conversion,omitempty"`
	Summary    *chart.ConversionSummary  `json:"summary,omitempty"`
	Retention  []models.RetentionCohort  `json:"retention,omitempty"`
	Sankey     *models.SankeyResult      `json:"sankey,omitempty"`
	Metrics    *models.SerieMetrics      `json:"metrics,omitempty"`
}

// Chart renders the committed result as of now. cap limits how many series
// are visible on first render; cap <= 0 shows every serie, as in edit mode.
// Absent or failed data is never transformed.
func (s *Session) Chart(now time.Time, cap int) ChartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := ChartView{
		ReportID:   s.id,
		State:      s.result.State,
		Family:     query.FamilyFor(s.def.ChartType),
		ChartType:  s.def.ChartType,
		Interval:   s.def.Interval,
		Generation: s.generation,
		Rows:       []chart.RechartRow{},
		Series:     []models.Serie{},
		Visible:    []string{},
		Dashes:     []chart.StrokeDash{},
	}

	res := s.result
	switch res.State {
	case StateIdle, StateLoading:
		view.Placeholder = true
		return view
	case StateError:
		if res.Err != nil {
			view.Error = res.Err.Error()
		}
		return view
	case StateEmpty:
		return view
	}

	updated := res.UpdatedAt
	view.UpdatedAt = &updated
	view.Family = res.Family

	switch res.Family {
	case query.FamilyFunnel:
		view.Funnel = res.Funnel
	case query.FamilyConversion:
		view.Conversion = res.Conversion
		summary := chart.Summarize(*res.Conversion, s.def.Series)
		view.Summary = &summary
	case query.FamilyRetention:
		view.Retention = res.Retention
	case query.FamilySankey:
		view.Sankey = res.Sankey
	default:
		s.renderSeries(&view, res.Series, now, cap)
	}
	return view
}

// renderSeries runs select, transform and the dashed stroke pass. Called
// with s.mu held.
func (s *Session) renderSeries(view *ChartView, result *models.AggregationResult, now time.Time, cap int) {
	start := time.Now()

	var selected []models.Serie
	if cap <= 0 {
		selected = chart.Select(result, nil, 0)
	} else {
		if s.visible == nil {
			s.visible = chart.NewVisibleSetFromSeries(result, cap)
		}
		selected = chart.Select(result, s.visible, cap)
		view.Visible = s.visible.IDs()
	}

	view.Series = selected
	view.Rows = chart.Transform(selected, nil)
	m := result.Metrics
	view.Metrics = &m

	table := chart.BuildTable(result, breakdownNames(s.def.Breakdowns), len(s.def.Breakdowns) > 1)
	view.Table = &table

	if s.stroke == nil {
		s.stroke = chart.NewStrokeCalculator(result.Series, s.def.Interval, s.def.Range, now)
	} else {
		s.stroke.Recompute(now)
	}
	for _, serie := range selected {
		view.Dashes = append(view.Dashes, s.stroke.DashFor(chart.CountKey(serie.ID)))
	}

	metrics.RecordTransform(string(s.def.ChartType), time.Since(start))
}

// Recompute re-evaluates the live boundaries of the rendered series as of
// now. It reports whether any boundary moved.
func (s *Session) Recompute(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stroke == nil {
		return false
	}
	return s.stroke.Recompute(now)
}

// FinalizeStroke acknowledges the dashed pattern of the current render.
func (s *Session) FinalizeStroke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stroke != nil {
		s.stroke.Finalize()
	}
}

// StrokeFinalized reports whether the current pattern was acknowledged.
func (s *Session) StrokeFinalized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stroke != nil && s.stroke.Finalized()
}

// Summary returns the conversion summary of the committed result, or false
// when the session holds no conversion result.
func (s *Session) Summary() (chart.ConversionSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result.State != StateSuccess || s.result.Conversion == nil {
		return chart.ConversionSummary{}, false
	}
	return chart.Summarize(*s.result.Conversion, s.def.Series), true
}

func breakdownNames(breakdowns []models.Breakdown) []string {
	out := make([]string, len(breakdowns))
	for i, b := range breakdowns {
		out[i] = b.Name
	}
	return out
}
