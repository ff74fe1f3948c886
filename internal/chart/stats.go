// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package chart

import (
	"math"

	"github.com/tomtom215/reportkit/internal/models"
)

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// finite returns v, or 0 when v is NaN or infinite.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Share returns numerator/denominator, or 0 when the denominator is zero.
func Share(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return finite(numerator / denominator)
}

// Percent returns Share scaled to [0, 100] for non-negative inputs.
func Percent(numerator, denominator float64) float64 {
	return Share(numerator, denominator) * 100
}

// Sum returns the sum of values.
func Sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

// Average returns the arithmetic mean of values, or 0 for no values.
func Average(values []float64) float64 {
	return Share(Sum(values), float64(len(values)))
}

// Min returns the smallest value, or 0 for no values.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value, or 0 for no values.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// PreviousMetric compares current against previous. Diff is the percentage
// by which the larger value exceeds the smaller, rounded to one decimal,
// and is nil when the values are equal or the ratio is undefined.
func PreviousMetric(current, previous float64) *models.PreviousValue {
	var ratio float64
	switch {
	case current > previous:
		ratio = current / previous
	case current < previous:
		ratio = previous / current
	}
	diff := Round((ratio-1)*100, 1)

	out := &models.PreviousValue{Value: previous, State: models.PreviousNeutral}
	if !math.IsNaN(diff) && !math.IsInf(diff, 0) && current != previous {
		out.Diff = &diff
	}
	switch {
	case current > previous:
		out.State = models.PreviousPositive
	case current < previous:
		out.State = models.PreviousNegative
	}
	return out
}

// counts extracts the counts of a serie's points.
func counts(points []models.DataPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Count
	}
	return out
}

// metricsOf computes the aggregates of a set of values. Count is left to
// the caller since it is a distinct count, not a point count.
func metricsOf(values []float64) models.SerieMetrics {
	return models.SerieMetrics{
		Sum:     Sum(values),
		Average: Round(Average(values), 2),
		Min:     Min(values),
		Max:     Max(values),
	}
}
