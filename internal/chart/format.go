// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package chart

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tomtom215/reportkit/internal/models"
)

// AlphabetIDs are the letters formulas use to reference series items.
var AlphabetIDs = strings.Split("ABCDEFGHIJKLMNOPQRSTUVWXYZ", "")

// FormatOptions controls FormatResult.
type FormatOptions struct {
	// Limit caps the number of series after sorting. Zero means no cap.
	Limit int
	// AlphaIDs prefixes each serie's first name with its item letter, e.g. "(A) signup".
	AlphaIDs bool
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and collapses every run of non-alphanumerics to "-".
func Slug(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// uniqueID returns id, or id with a "-2", "-3"... suffix when an earlier
// serie already took it. Breakdown values that differ only in case or
// punctuation slug to the same id.
func uniqueID(seen map[string]int, id string) string {
	n := seen[id]
	seen[id] = n + 1
	if n == 0 {
		return id
	}
	for {
		n++
		candidate := fmt.Sprintf("%s-%d", id, n)
		if seen[candidate] == 0 {
			seen[candidate] = 1
			return candidate
		}
	}
}

// breakdownKey identifies a breakdown combination for previous-period matching.
func breakdownKey(breakdowns []string) string {
	return strings.Join(breakdowns, ":::")
}

// FormatResult turns raw per-serie query output into an AggregationResult.
// Each serie gets its metrics and, when a previous serie with the same
// series item and breakdown values exists, per-point and per-metric
// comparisons joined by point position. Series are ordered by sum,
// largest first, before Limit is applied. Index records each serie's
// position in the raw output so colors stay stable across sorting.
func FormatResult(raw models.RawResult, items models.SeriesList, opts FormatOptions) *models.AggregationResult {
	previous := make(map[string]models.RawSerie, len(raw.Previous))
	for _, p := range raw.Previous {
		k := fmt.Sprintf("%d|%s", p.DefinitionIndex, breakdownKey(p.Breakdowns))
		if _, exists := previous[k]; !exists {
			previous[k] = p
		}
	}

	series := make([]models.Serie, 0, len(raw.Current))
	ids := make(map[string]int, len(raw.Current))
	var all []float64
	for i, cs := range raw.Current {
		values := counts(cs.Data)
		all = append(all, values...)

		metrics := metricsOf(values)
		metrics.Count = cs.TotalCount

		serie := models.Serie{
			ID:      cs.ID,
			Names:   serieNames(cs, items, opts.AlphaIDs),
			Event:   serieEvent(cs, items),
			Index:   i,
			Metrics: metrics,
			Data:    make([]models.DataPoint, len(cs.Data)),
		}
		if serie.ID == "" {
			serie.ID = Slug(strings.Join(append([]string{fmt.Sprint(cs.DefinitionIndex)}, serie.Names...), "-"))
		}
		serie.ID = uniqueID(ids, serie.ID)

		prev, hasPrev := previous[fmt.Sprintf("%d|%s", cs.DefinitionIndex, breakdownKey(cs.Breakdowns))]
		for j, p := range cs.Data {
			point := models.DataPoint{Date: p.Date, Count: p.Count}
			if hasPrev && j < len(prev.Data) {
				point.Previous = PreviousMetric(p.Count, prev.Data[j].Count)
			}
			serie.Data[j] = point
		}
		if hasPrev {
			pv := counts(prev.Data)
			pm := metricsOf(pv)
			serie.Metrics.Previous = &models.PreviousMetrics{
				Sum:     PreviousMetric(metrics.Sum, pm.Sum),
				Average: PreviousMetric(metrics.Average, pm.Average),
				Min:     PreviousMetric(metrics.Min, pm.Min),
				Max:     PreviousMetric(metrics.Max, pm.Max),
				Count:   PreviousMetric(metrics.Count, prev.TotalCount),
			}
		}
		series = append(series, serie)
	}

	sort.SliceStable(series, func(a, b int) bool {
		return series[a].Metrics.Sum > series[b].Metrics.Sum
	})
	if opts.Limit > 0 && len(series) > opts.Limit {
		series = series[:opts.Limit]
	}

	return &models.AggregationResult{
		Series:  series,
		Metrics: metricsOf(all),
	}
}

// serieNames builds the label path: the item label followed by breakdown values.
func serieNames(cs models.RawSerie, items models.SeriesList, alpha bool) []string {
	first := cs.Event.Name
	if cs.DefinitionIndex >= 0 && cs.DefinitionIndex < len(items) {
		first = items[cs.DefinitionIndex].Label()
	}
	if first == "" {
		first = "unknown"
	}
	if alpha && cs.DefinitionIndex >= 0 && cs.DefinitionIndex < len(AlphabetIDs) {
		first = fmt.Sprintf("(%s) %s", AlphabetIDs[cs.DefinitionIndex], first)
	}
	return append([]string{first}, cs.Breakdowns...)
}

func serieEvent(cs models.RawSerie, items models.SeriesList) models.SerieEvent {
	ev := cs.Event
	if cs.DefinitionIndex >= 0 && cs.DefinitionIndex < len(items) {
		item := items[cs.DefinitionIndex]
		ev.ID = item.ItemID()
		if f, ok := item.(models.FormulaItem); ok {
			ev.Name = f.Label()
		} else if ev.Name == "" {
			ev.Name = item.Label()
		}
	}
	return ev
}
