// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package chart

import (
	"strings"
	"time"

	"github.com/tomtom215/reportkit/internal/models"
)

// NotSetValue labels a missing breakdown value.
const NotSetValue = "(not set)"

// ConversionRow is one bucket of a conversion query, before grouping.
type ConversionRow struct {
	Date        time.Time
	Total       float64
	Conversions float64
	Rate        float64
	Breakdowns  []string
}

// ConversionSerieID identifies a conversion serie by its breakdown values.
func ConversionSerieID(breakdowns []string) string {
	if len(breakdowns) == 0 {
		return "conversion"
	}
	id := strings.Join(normalizeBreakdowns(breakdowns, len(breakdowns)), "|")
	if id == "" {
		return NotSetValue
	}
	return id
}

func normalizeBreakdowns(values []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		if i < len(values) && values[i] != "" {
			out[i] = values[i]
		} else {
			out[i] = NotSetValue
		}
	}
	return out
}

// GroupConversion splits rows into one serie per breakdown combination, in
// order of first appearance. With breakdownCount 0 all rows form the single
// "conversion" serie.
func GroupConversion(rows []ConversionRow, breakdownCount int) []models.ConversionSerie {
	if breakdownCount == 0 {
		s := models.ConversionSerie{
			ID:         ConversionSerieID(nil),
			Breakdowns: []string{},
			Data:       make([]models.ConversionPoint, 0, len(rows)),
		}
		for _, r := range rows {
			s.Data = append(s.Data, conversionPoint(r))
		}
		return []models.ConversionSerie{s}
	}

	var out []models.ConversionSerie
	index := make(map[string]int)
	for _, r := range rows {
		breakdowns := normalizeBreakdowns(r.Breakdowns, breakdownCount)
		id := ConversionSerieID(breakdowns)
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			out = append(out, models.ConversionSerie{ID: id, Breakdowns: breakdowns})
		}
		out[i].Data = append(out[i].Data, conversionPoint(r))
	}
	if out == nil {
		out = []models.ConversionSerie{}
	}
	return out
}

func conversionPoint(r ConversionRow) models.ConversionPoint {
	return models.ConversionPoint{
		Date:        r.Date,
		Total:       r.Total,
		Conversions: r.Conversions,
		Rate:        r.Rate,
	}
}

// ConversionRate returns conversions as a percentage of total, rounded to
// two decimals.
func ConversionRate(conversions, total float64) float64 {
	return Round(Percent(conversions, total), 2)
}
