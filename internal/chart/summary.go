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

// AverageOfSeries averages each serie's values, then averages those means.
// Series without values contribute a mean of 0.
func AverageOfSeries(series [][]float64) float64 {
	means := make([]float64, len(series))
	for i, s := range series {
		means[i] = Average(s)
	}
	return Average(means)
}

// RateMatch locates a single conversion point.
type RateMatch struct {
	SerieIndex int       `json:"serie_index"`
	PointIndex int       `json:"point_index"`
	Rate       float64   `json:"rate"`
	Date       time.Time `json:"date"`
	Breakdowns []string  `json:"breakdowns"`
}

// AverageMatch is a serie with its mean conversion rate.
type AverageMatch struct {
	SerieIndex int      `json:"serie_index"`
	Average    float64  `json:"average"`
	Breakdowns []string `json:"breakdowns"`
}

// BestPoint returns the point with the highest rate across all series.
// Ties keep the first occurrence in serie order, then point order.
func BestPoint(series []models.ConversionSerie) (RateMatch, bool) {
	return extremePoint(series, func(a, b float64) bool { return a > b })
}

// WorstPoint returns the point with the lowest rate across all series.
func WorstPoint(series []models.ConversionSerie) (RateMatch, bool) {
	return extremePoint(series, func(a, b float64) bool { return a < b })
}

func extremePoint(series []models.ConversionSerie, better func(a, b float64) bool) (RateMatch, bool) {
	var (
		match RateMatch
		found bool
	)
	for si, s := range series {
		for pi, p := range s.Data {
			if !found || better(p.Rate, match.Rate) {
				match = RateMatch{
					SerieIndex: si,
					PointIndex: pi,
					Rate:       p.Rate,
					Date:       p.Date,
					Breakdowns: s.Breakdowns,
				}
				found = true
			}
		}
	}
	return match, found
}

// BestAverage returns the serie with the highest mean rate. With fewer than
// two series the comparison is meaningless and ok is false.
func BestAverage(series []models.ConversionSerie) (AverageMatch, bool) {
	return extremeAverage(series, func(a, b float64) bool { return a > b })
}

// WorstAverage returns the serie with the lowest mean rate, under the same
// rules as BestAverage.
func WorstAverage(series []models.ConversionSerie) (AverageMatch, bool) {
	return extremeAverage(series, func(a, b float64) bool { return a < b })
}

func extremeAverage(series []models.ConversionSerie, better func(a, b float64) bool) (AverageMatch, bool) {
	if len(series) < 2 {
		return AverageMatch{}, false
	}
	var match AverageMatch
	for i, s := range series {
		avg := Average(rates(s))
		if i == 0 || better(avg, match.Average) {
			match = AverageMatch{SerieIndex: i, Average: avg, Breakdowns: s.Breakdowns}
		}
	}
	return match, true
}

func rates(s models.ConversionSerie) []float64 {
	out := make([]float64, len(s.Data))
	for i, p := range s.Data {
		out[i] = p.Rate
	}
	return out
}

func totalConversions(series []models.ConversionSerie) float64 {
	var total float64
	for _, s := range series {
		for _, p := range s.Data {
			total += p.Conversions
		}
	}
	return total
}

func averageRate(series []models.ConversionSerie) float64 {
	all := make([][]float64, len(series))
	for i, s := range series {
		all[i] = rates(s)
	}
	return AverageOfSeries(all)
}

// ConversionSummary is the headline figures of a conversion report.
// Previous fields are nil when no previous period was queried, and the
// best/worst fields are nil when there is nothing to compare.
type ConversionSummary struct {
	Flow                     string        `json:"flow"`
	AverageRate              float64       `json:"average_rate"`
	TotalConversions         float64       `json:"total_conversions"`
	PreviousAverageRate      *float64      `json:"previous_average_rate,omitempty"`
	PreviousTotalConversions *float64      `json:"previous_total_conversions,omitempty"`
	BestAverage              *AverageMatch `json:"best_average,omitempty"`
	WorstAverage             *AverageMatch `json:"worst_average,omitempty"`
	Best                     *RateMatch    `json:"best,omitempty"`
	Worst                    *RateMatch    `json:"worst,omitempty"`
}

// Summarize computes the conversion summary. items supplies the flow label,
// the event labels joined with an arrow.
func Summarize(result models.ConversionResult, items models.SeriesList) ConversionSummary {
	out := ConversionSummary{
		Flow:             flowLabel(items),
		AverageRate:      averageRate(result.Current),
		TotalConversions: totalConversions(result.Current),
	}
	if result.Previous != nil {
		avg := averageRate(result.Previous)
		total := totalConversions(result.Previous)
		out.PreviousAverageRate = &avg
		out.PreviousTotalConversions = &total
	}
	if m, ok := BestAverage(result.Current); ok {
		out.BestAverage = &m
	}
	if m, ok := WorstAverage(result.Current); ok {
		out.WorstAverage = &m
	}
	if m, ok := BestPoint(result.Current); ok {
		out.Best = &m
	}
	if m, ok := WorstPoint(result.Current); ok {
		out.Worst = &m
	}
	return out
}

func flowLabel(items models.SeriesList) string {
	labels := make([]string, 0, len(items))
	for _, item := range items {
		if e, ok := item.(models.EventItem); ok {
			labels = append(labels, e.Label())
		}
	}
	return strings.Join(labels, " → ")
}
