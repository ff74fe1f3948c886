// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package chart

import (
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/reportkit/internal/models"
)

// TableRow is one serie rendered as a table row. DateValues is aligned with
// the dates the rows were built from; a missing point renders as 0.
type TableRow struct {
	ID              string    `json:"id"`
	SerieName       string    `json:"serie_name"`
	BreakdownValues []string  `json:"breakdown_values"`
	Count           float64   `json:"count"`
	Sum             float64   `json:"sum"`
	Average         float64   `json:"average"`
	Min             float64   `json:"min"`
	Max             float64   `json:"max"`
	DateValues      []float64 `json:"date_values"`
	GroupKey        string    `json:"group_key,omitempty"`
	IsSummary       bool      `json:"is_summary,omitempty"`
}

// Table is a report rendered for the table view.
type Table struct {
	Dates          []time.Time `json:"dates"`
	BreakdownNames []string    `json:"breakdown_names"`
	Rows           []TableRow  `json:"rows"`
}

// UniqueDates returns every distinct point date across series, ascending.
func UniqueDates(series []models.Serie) []time.Time {
	seen := make(map[int64]bool)
	var out []time.Time
	for _, s := range series {
		for _, p := range s.Data {
			k := p.Date.UnixNano()
			if !seen[k] {
				seen[k] = true
				out = append(out, p.Date)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// FlatRows builds one row per serie, in serie order.
func FlatRows(series []models.Serie, dates []time.Time) []TableRow {
	rows := make([]TableRow, len(series))
	for i, s := range series {
		byDate := make(map[int64]float64, len(s.Data))
		for _, p := range s.Data {
			byDate[p.Date.UnixNano()] = p.Count
		}
		values := make([]float64, len(dates))
		for j, d := range dates {
			values[j] = byDate[d.UnixNano()]
		}

		row := TableRow{
			ID:              s.ID,
			BreakdownValues: []string{},
			Count:           s.Metrics.Count,
			Sum:             s.Metrics.Sum,
			Average:         s.Metrics.Average,
			Min:             s.Metrics.Min,
			Max:             s.Metrics.Max,
			DateValues:      values,
		}
		if len(s.Names) > 0 {
			row.SerieName = s.Names[0]
			row.BreakdownValues = append(row.BreakdownValues, s.Names[1:]...)
		}
		rows[i] = row
	}
	return rows
}

// GroupedRows sorts rows by sum and groups them under their first breakdown
// value. Groups are ordered by their largest row. Without breakdowns the
// rows are only sorted.
func GroupedRows(series []models.Serie, dates []time.Time) []TableRow {
	rows := FlatRows(series, dates)
	sortRowsBySum(rows)
	if len(rows) == 0 || len(rows[0].BreakdownValues) == 0 {
		return rows
	}

	groups := make(map[string][]TableRow)
	var order []string
	for _, r := range rows {
		key := ""
		if len(r.BreakdownValues) > 0 {
			key = r.BreakdownValues[0]
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		r.GroupKey = key
		groups[key] = append(groups[key], r)
	}
	// rows are sorted, so each group's first row is its largest.
	sort.SliceStable(order, func(a, b int) bool {
		return groups[order[a]][0].Sum > groups[order[b]][0].Sum
	})

	out := make([]TableRow, 0, len(rows))
	for _, key := range order {
		out = append(out, groups[key]...)
	}
	return out
}

// SummaryRow collapses a group into one row: sums and date values add up,
// the average is the mean of row averages, min and max span the group.
func SummaryRow(group []TableRow, groupKey string) TableRow {
	out := TableRow{
		ID:              fmt.Sprintf("summary-%s", groupKey),
		GroupKey:        groupKey,
		IsSummary:       true,
		BreakdownValues: []string{},
	}
	if len(group) == 0 {
		return out
	}

	width := 0
	averages := make([]float64, len(group))
	mins := make([]float64, len(group))
	maxes := make([]float64, len(group))
	for i, r := range group {
		out.Sum += r.Sum
		out.Count += r.Count
		averages[i] = r.Average
		mins[i] = r.Min
		maxes[i] = r.Max
		if len(r.DateValues) > width {
			width = len(r.DateValues)
		}
	}
	out.Average = Average(averages)
	out.Min = Min(mins)
	out.Max = Max(maxes)
	out.DateValues = make([]float64, width)
	for _, r := range group {
		for j, v := range r.DateValues {
			out.DateValues[j] += v
		}
	}

	out.SerieName = group[0].SerieName
	out.BreakdownValues = append(out.BreakdownValues, group[0].BreakdownValues...)
	return out
}

// ReorderBreakdowns orders breakdown columns by their number of distinct
// values, fewest first, and rewrites each serie's names to match. The input
// is not modified. It returns the reordered series and the new column order
// as indexes into the original breakdown list.
func ReorderBreakdowns(series []models.Serie, count int) ([]models.Serie, []int) {
	order := make([]int, count)
	for i := range order {
		order[i] = i
	}
	if count == 0 || len(series) == 0 {
		return series, order
	}

	unique := make([]int, count)
	for i := 0; i < count; i++ {
		seen := make(map[string]bool)
		for _, s := range series {
			if i+1 < len(s.Names) && s.Names[i+1] != "" {
				seen[s.Names[i+1]] = true
			}
		}
		unique[i] = len(seen)
	}
	sort.SliceStable(order, func(a, b int) bool { return unique[order[a]] < unique[order[b]] })

	out := make([]models.Serie, len(series))
	for i, s := range series {
		names := make([]string, 0, count+1)
		if len(s.Names) > 0 {
			names = append(names, s.Names[0])
		} else {
			names = append(names, "")
		}
		for _, old := range order {
			v := ""
			if old+1 < len(s.Names) {
				v = s.Names[old+1]
			}
			names = append(names, v)
		}
		s.Names = names
		out[i] = s
	}
	return out, order
}

// BuildTable renders result for the table view. breakdownNames labels the
// breakdown columns; missing labels become "Breakdown N".
func BuildTable(result *models.AggregationResult, breakdownNames []string, grouped bool) Table {
	if result == nil {
		return Table{Dates: []time.Time{}, BreakdownNames: []string{}, Rows: []TableRow{}}
	}

	count := len(breakdownNames)
	if len(result.Series) > 0 && len(result.Series[0].Names)-1 > count {
		count = len(result.Series[0].Names) - 1
	}
	names := make([]string, count)
	for i := range names {
		if i < len(breakdownNames) && breakdownNames[i] != "" {
			names[i] = breakdownNames[i]
		} else {
			names[i] = fmt.Sprintf("Breakdown %d", i+1)
		}
	}

	dates := UniqueDates(result.Series)
	series, order := ReorderBreakdowns(result.Series, count)
	reordered := make([]string, len(order))
	for i, old := range order {
		reordered[i] = names[old]
	}

	var rows []TableRow
	if grouped {
		rows = GroupedRows(series, dates)
	} else {
		rows = FlatRows(series, dates)
		sortRowsBySum(rows)
	}
	if dates == nil {
		dates = []time.Time{}
	}
	return Table{Dates: dates, BreakdownNames: reordered, Rows: rows}
}

func sortRowsBySum(rows []TableRow) {
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].Sum > rows[b].Sum })
}
