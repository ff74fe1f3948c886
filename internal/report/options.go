// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package report

import "github.com/tomtom215/reportkit/internal/models"

// DefaultOptionsFor returns a fresh default options block for t, or nil
// when t needs no extra configuration. It never reads report state.
func DefaultOptionsFor(t models.ChartType) models.Options {
	switch t {
	case models.ChartFunnel:
		return models.FunnelOptions{}
	case models.ChartRetention:
		return models.RetentionOptions{Criteria: models.CriteriaOnOrAfter}
	case models.ChartSankey:
		return models.SankeyOptions{
			Mode:    models.SankeyAfter,
			Steps:   models.SankeyDefaultSteps,
			Exclude: []string{},
		}
	case models.ChartHistogram:
		return models.HistogramOptions{}
	}
	return nil
}

// normalizeOptions enforces that options, when set, belong to chartType.
// Mismatched blocks are replaced with the chart type's defaults.
func normalizeOptions(def *models.ReportDefinition) {
	if def.Options == nil || def.Options.Type() == def.ChartType {
		return
	}
	def.Options = DefaultOptionsFor(def.ChartType)
}

// funnelOptions returns the current funnel block, or a fresh one.
func funnelOptions(def models.ReportDefinition) models.FunnelOptions {
	if o, ok := def.Options.(models.FunnelOptions); ok {
		return o
	}
	return DefaultOptionsFor(models.ChartFunnel).(models.FunnelOptions)
}

// retentionOptions returns the current retention block, or a fresh one.
func retentionOptions(def models.ReportDefinition) models.RetentionOptions {
	if o, ok := def.Options.(models.RetentionOptions); ok {
		return o
	}
	return DefaultOptionsFor(models.ChartRetention).(models.RetentionOptions)
}

// sankeyOptions returns the current sankey block, or a fresh one.
func sankeyOptions(def models.ReportDefinition) models.SankeyOptions {
	if o, ok := def.Options.(models.SankeyOptions); ok {
		return o
	}
	return DefaultOptionsFor(models.ChartSankey).(models.SankeyOptions)
}

// histogramOptions returns the current histogram block, or a fresh one.
func histogramOptions(def models.ReportDefinition) models.HistogramOptions {
	if o, ok := def.Options.(models.HistogramOptions); ok {
		return o
	}
	return DefaultOptionsFor(models.ChartHistogram).(models.HistogramOptions)
}

// ClampSankeySteps bounds n to the supported number of journey steps.
func ClampSankeySteps(n int) int {
	if n < models.SankeyMinSteps {
		return models.SankeyMinSteps
	}
	if n > models.SankeyMaxSteps {
		return models.SankeyMaxSteps
	}
	return n
}
