// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package models

import "time"

// FunnelStep is one step of a funnel with its conversion and dropoff figures.
type FunnelStep struct {
	Event          SerieEvent `json:"event"`
	DisplayName    string     `json:"display_name"`
	Count          float64    `json:"count"`
	Percent        float64    `json:"percent"`
	DropoffCount   float64    `json:"dropoff_count"`
	DropoffPercent float64    `json:"dropoff_percent"`
	PreviousCount  float64    `json:"previous_count"`
}

// FunnelResult is the computed funnel for one breakdown group.
type FunnelResult struct {
	Breakdowns    []string     `json:"breakdowns,omitempty"`
	TotalSessions float64      `json:"total_sessions"`
	Steps         []FunnelStep `json:"steps"`
	// MostDropoffsIndex is the step losing the most users, -1 when there are no steps.
	MostDropoffsIndex int     `json:"most_dropoffs_index"`
	LastStepPercent   float64 `json:"last_step_percent"`
}

// FunnelComparison pairs a funnel with its previous-period counterpart.
type FunnelComparison struct {
	Current  []FunnelResult `json:"current"`
	Previous []FunnelResult `json:"previous,omitempty"`
}

// ConversionPoint is the conversion rate for one bucket.
type ConversionPoint struct {
	Date        time.Time `json:"date"`
	Total       float64   `json:"total"`
	Conversions float64   `json:"conversions"`
	// Rate is a percentage in [0, 100].
	Rate float64 `json:"rate"`
}

// ConversionSerie is the conversion rate over time for one breakdown combination.
type ConversionSerie struct {
	ID         string            `json:"id"`
	Breakdowns []string          `json:"breakdowns"`
	Data       []ConversionPoint `json:"data"`
}

// ConversionResult is a conversion query output with an optional previous period.
type ConversionResult struct {
	Current  []ConversionSerie `json:"current"`
	Previous []ConversionSerie `json:"previous,omitempty"`
}

// RetentionCohort is one cohort row.
type RetentionCohort struct {
	CohortInterval string    `json:"cohort_interval"`
	Sum            float64   `json:"sum"`
	Values         []float64 `json:"values"`
	Percentages    []float64 `json:"percentages"`
}

// SankeyNode is an event at a journey step.
type SankeyNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Step  int     `json:"step"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
	// Percentage is the node value as a share of total sessions, in [0, 100].
	Percentage float64 `json:"percentage"`
}

// SankeyLink is a transition between two nodes.
type SankeyLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
	// Pct is the link value as a share of total sessions, in [0, 100].
	Pct float64 `json:"pct"`
	// ShareOfSource is the link value as a share of its source node, in [0, 100].
	ShareOfSource float64 `json:"share_of_source"`
}

// SankeyTransition is a raw step transition as returned by the query layer.
type SankeyTransition struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Step   int     `json:"step"`
	Value  float64 `json:"value"`
}

// SankeyEntry is a journey entry event with its session count.
type SankeyEntry struct {
	Event string  `json:"event"`
	Count float64 `json:"count"`
}

// SankeyResult is a computed user journey flow.
type SankeyResult struct {
	Nodes         []SankeyNode `json:"nodes"`
	Links         []SankeyLink `json:"links"`
	TotalSessions float64      `json:"total_sessions"`
}
