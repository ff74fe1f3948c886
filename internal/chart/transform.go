// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package chart

import (
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reportkit/internal/models"
)

// ChartColors is the serie palette, indexed by Serie.Index.
var ChartColors = []string{
	"#2563EB", "#ff7557", "#7fe1d8", "#f8bc3c", "#b3596e", "#72bef4", "#ffb27a",
	"#0f7ea0", "#3ba974", "#febbb2", "#cb80dc", "#5cb7af", "#7856ff",
}

// ColorFor returns the palette color for a serie index.
func ColorFor(index int) string {
	if index < 0 {
		index = -index
	}
	return ChartColors[index%len(ChartColors)]
}

// CountKey is the row key carrying a serie's current value.
func CountKey(serieID string) string { return serieID + ":count" }

// PrevCountKey is the row key carrying a serie's previous-period value.
func PrevCountKey(serieID string) string { return serieID + ":prev:count" }

// PayloadKey is the row key carrying a serie's full point for tooltips.
func PayloadKey(serieID string) string { return serieID + ":payload" }

// PointPayload is the detail attached to every rendered point.
type PointPayload struct {
	SerieID  string                `json:"serie_id"`
	Names    []string              `json:"names"`
	Index    int                   `json:"index"`
	Color    string                `json:"color"`
	Event    models.SerieEvent     `json:"event"`
	Date     time.Time             `json:"date"`
	Count    float64               `json:"count"`
	Previous *models.PreviousValue `json:"previous,omitempty"`
}

// RechartRow is one date-indexed row of chart data. Values holds the
// per-serie keys built by CountKey, PrevCountKey and PayloadKey. A serie
// without a point at Date has no keys in the row.
type RechartRow struct {
	Date   time.Time
	Values map[string]any
}

// MarshalJSON flattens the row into a single object with a "date" key.
func (r RechartRow) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		flat[k] = v
	}
	flat["date"] = r.Date
	return json.Marshal(flat)
}

// Count returns the current value of serieID in this row.
func (r RechartRow) Count(serieID string) (float64, bool) {
	v, ok := r.Values[CountKey(serieID)].(float64)
	return v, ok
}

// PrevCount returns the previous-period value of serieID in this row.
func (r RechartRow) PrevCount(serieID string) (float64, bool) {
	v, ok := r.Values[PrevCountKey(serieID)].(float64)
	return v, ok
}

// Payload returns the point detail of serieID in this row.
func (r RechartRow) Payload(serieID string) (PointPayload, bool) {
	v, ok := r.Values[PayloadKey(serieID)].(PointPayload)
	return v, ok
}

// Transform merges series into date-ordered rows. There is one row per
// distinct timestamp across all series. Previous-period values are joined
// by point position: the Nth previous point belongs to the Nth current
// point of the serie with the same id. When previous is nil, a point's own
// Previous value is used instead. Transform is pure and its output depends
// only on the order of series, never on map iteration.
func Transform(series []models.Serie, previous []models.Serie) []RechartRow {
	prevByID := make(map[string][]models.DataPoint, len(previous))
	for _, p := range previous {
		if _, exists := prevByID[p.ID]; !exists {
			prevByID[p.ID] = p.Data
		}
	}

	var stamps []int64
	rowIndex := make(map[int64]int)
	for _, s := range series {
		for _, p := range s.Data {
			k := p.Date.UnixNano()
			if _, ok := rowIndex[k]; !ok {
				rowIndex[k] = 0
				stamps = append(stamps, k)
			}
		}
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	rows := make([]RechartRow, len(stamps))
	for i, k := range stamps {
		rowIndex[k] = i
		rows[i] = RechartRow{Values: make(map[string]any)}
	}

	for _, s := range series {
		prevData, hasPrevSerie := prevByID[s.ID]
		for j, p := range s.Data {
			row := &rows[rowIndex[p.Date.UnixNano()]]
			if row.Date.IsZero() {
				row.Date = p.Date
			}

			prevValue := p.Previous
			if hasPrevSerie {
				prevValue = nil
				if j < len(prevData) {
					prevValue = PreviousMetric(p.Count, prevData[j].Count)
				}
			}

			row.Values[CountKey(s.ID)] = p.Count
			if prevValue != nil {
				row.Values[PrevCountKey(s.ID)] = prevValue.Value
			}
			row.Values[PayloadKey(s.ID)] = PointPayload{
				SerieID:  s.ID,
				Names:    s.Names,
				Index:    s.Index,
				Color:    ColorFor(s.Index),
				Event:    s.Event,
				Date:     p.Date,
				Count:    p.Count,
				Previous: prevValue,
			}
		}
	}
	return rows
}
