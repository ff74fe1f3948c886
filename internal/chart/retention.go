// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package chart

import (
	"github.com/tomtom215/reportkit/internal/models"
)

// WeightedAverageCohort labels the synthetic first row of RetentionRows.
const WeightedAverageCohort = "Weighted Average"

// RetentionRows fills each cohort's percentages as the fraction of its Sum
// retained per period, rounded to two decimals, and prepends a weighted
// average row. Zero cells are left out of the averages so periods a cohort
// has not reached yet do not drag them down. A zero Sum yields 0.
func RetentionRows(cohorts []models.RetentionCohort) []models.RetentionCohort {
	if len(cohorts) == 0 {
		return []models.RetentionCohort{}
	}

	width := 0
	for _, c := range cohorts {
		if len(c.Values) > width {
			width = len(c.Values)
		}
	}

	processed := make([]models.RetentionCohort, len(cohorts))
	valueWeight := make([]float64, width)
	valueSum := make([]float64, width)
	pctWeight := make([]float64, width)
	pctSum := make([]float64, width)
	var totalSum float64

	for i, c := range cohorts {
		row := models.RetentionCohort{
			CohortInterval: c.CohortInterval,
			Sum:            c.Sum,
			Values:         make([]float64, width),
			Percentages:    make([]float64, width),
		}
		copy(row.Values, c.Values)
		for j, v := range row.Values {
			row.Percentages[j] = Round(Share(v, c.Sum), 2)
		}
		processed[i] = row

		totalSum += c.Sum
		for j := 0; j < width; j++ {
			if v := row.Values[j]; v != 0 {
				valueSum[j] += c.Sum
				valueWeight[j] += v * c.Sum
			}
			if p := row.Percentages[j]; p != 0 {
				pctSum[j] += c.Sum
				pctWeight[j] += p * c.Sum
			}
		}
	}

	avg := models.RetentionCohort{
		CohortInterval: WeightedAverageCohort,
		Sum:            Round(Share(totalSum, float64(len(cohorts))), 0),
		Values:         make([]float64, width),
		Percentages:    make([]float64, width),
	}
	for j := 0; j < width; j++ {
		avg.Values[j] = Round(Share(valueWeight[j], valueSum[j]), 0)
		avg.Percentages[j] = Round(Share(pctWeight[j], pctSum[j]), 2)
	}

	return append([]models.RetentionCohort{avg}, processed...)
}
