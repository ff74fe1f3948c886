// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package chart

import (
	"github.com/tomtom215/reportkit/internal/models"
)

// FunnelLevel is the number of groups whose furthest reached step is Level
// (1-based), as returned by a funnel query.
type FunnelLevel struct {
	Level int     `json:"level"`
	Count float64 `json:"count"`
}

// FillFunnel expands levels into one cumulative count per step. A group that
// reached step N also passed every step before it, so counts accumulate
// from the last step up. Missing levels count as zero.
func FillFunnel(levels []FunnelLevel, steps int) []float64 {
	if steps <= 0 {
		return []float64{}
	}
	filled := make([]float64, steps)
	for _, l := range levels {
		if l.Level >= 1 && l.Level <= steps {
			filled[l.Level-1] += l.Count
		}
	}
	for i := steps - 2; i >= 0; i-- {
		filled[i] += filled[i+1]
	}
	return filled
}

// FunnelSteps computes per-step figures from cumulative counts. events are
// the funnel's event items in order; counts beyond len(events) are ignored.
func FunnelSteps(counts []float64, events []models.EventItem, breakdowns []string) models.FunnelResult {
	n := len(counts)
	if len(events) < n {
		n = len(events)
	}

	out := models.FunnelResult{
		Breakdowns:        breakdowns,
		Steps:             make([]models.FunnelStep, 0, n),
		MostDropoffsIndex: -1,
	}
	if n == 0 {
		return out
	}
	out.TotalSessions = counts[0]

	var mostDropoffs float64
	for i := 0; i < n; i++ {
		previous := out.TotalSessions
		if i > 0 {
			previous = counts[i-1]
		}
		current := counts[i]

		dropoffPercent := 0.0
		if previous != 0 {
			dropoffPercent = 100 - Percent(current, previous)
		}

		step := models.FunnelStep{
			Event:          models.SerieEvent{ID: events[i].ID, Name: events[i].Name},
			DisplayName:    events[i].Label(),
			Count:          current,
			Percent:        Percent(current, out.TotalSessions),
			DropoffCount:   previous - current,
			DropoffPercent: dropoffPercent,
			PreviousCount:  previous,
		}
		if out.MostDropoffsIndex < 0 || step.DropoffCount > mostDropoffs {
			out.MostDropoffsIndex = i
			mostDropoffs = step.DropoffCount
		}
		out.Steps = append(out.Steps, step)
	}
	out.LastStepPercent = out.Steps[len(out.Steps)-1].Percent
	return out
}

// FunnelEvents returns the event items of a series list, skipping formulas.
func FunnelEvents(items models.SeriesList) []models.EventItem {
	out := make([]models.EventItem, 0, len(items))
	for _, item := range items {
		if e, ok := item.(models.EventItem); ok {
			out = append(out, e)
		}
	}
	return out
}
