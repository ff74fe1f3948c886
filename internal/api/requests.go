// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

// Package api provides HTTP request validation structs with go-playground/validator tags.
//
// The validation tags follow the go-playground/validator v10 syntax. The
// report definition itself carries its own tags (charttype, interval,
// daterange, metric) registered by the validation package, so a
// ReportRequest validates the nested definition as well.
//
// Example usage:
//
//	var req VisibilityRequest
//	if apiErr := decodeJSON(r, &req, false); apiErr != nil {
//	    respondAPIError(w, http.StatusBadRequest, apiErr)
//	    return
//	}
//	if apiErr := validateRequest(&req); apiErr != nil {
//	    respondAPIError(w, http.StatusBadRequest, apiErr)
//	    return
//	}
package api

import "github.com/tomtom215/reportkit/internal/models"

// ListReportsRequest represents the validated query parameters for GET /reports.
//
// Fields:
//   - Limit: Reports per page (1-1000, default 100)
//   - Offset: Reports to skip (0-1000000)
type ListReportsRequest struct {
	Limit  int `validate:"min=1,max=1000"`
	Offset int `validate:"min=0,max=1000000"`
}

// ReportRequest is the body of create and replace. On create an empty id
// is replaced by a generated one; on replace the path id wins.
type ReportRequest struct {
	ID         string                  `json:"id,omitempty" validate:"omitempty,max=64,excludesall=:/"`
	Definition models.ReportDefinition `json:"definition"`
}

// ChartRequest tunes a chart render. Cap overrides the visible series
// limit; Edit shows every serie. Refresh defaults to true.
type ChartRequest struct {
	Edit    bool  `json:"edit"`
	Cap     *int  `json:"cap,omitempty" validate:"omitempty,min=0,max=100"`
	Refresh *bool `json:"refresh,omitempty"`
}

// VisibilityRequest toggles one serie of the chart legend.
type VisibilityRequest struct {
	SerieID string `json:"serie_id" validate:"required,max=256"`
}

// ItemEditRequest changes the text fields of one series item. Edits are
// debounced unless Flush is set.
type ItemEditRequest struct {
	Formula     *string `json:"formula,omitempty" validate:"omitempty,max=1000"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=200"`
	Flush       bool    `json:"flush"`
}
