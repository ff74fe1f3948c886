// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps a thread-safe singleton validator with custom tags for
// the report vocabulary and translates failures into the API's
// VALIDATION_ERROR format.
//
// # Quick Start
//
//	type CreateReportRequest struct {
//	    Name      string `validate:"max=200"`
//	    ChartType string `validate:"required,charttype"`
//	    Range     string `validate:"required,daterange"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// # Custom Tags
//
//   - charttype: linear, bar, area, pie, histogram, metric, funnel,
//     conversion, retention, sankey or map
//   - interval: minute, hour, day, week or month
//   - daterange: a named range such as 30d, today or custom
//   - metric: sum, average, min, max or count
//   - segment: an event series segment such as event or user
//
// Empty strings pass every custom tag so they combine with omitempty and
// required. Whether an interval is legal for a range is not a field-level
// rule; the reducer corrects it.
//
// # Error Format
//
// A single failure yields a message and details with field, tag and value.
// Several failures are joined with "; " and listed under details.fields.
package validation
