// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package api

import "errors"

// Common API errors
var (
	// ErrReportExists indicates a create collided with a saved report id
	ErrReportExists = errors.New("report already exists")

	// ErrNotConversion indicates a summary was requested for a non-conversion report
	ErrNotConversion = errors.New("summary is only available for conversion reports")

	// ErrNothingToEdit indicates an item edit carried no fields
	ErrNothingToEdit = errors.New("nothing to edit")
)
