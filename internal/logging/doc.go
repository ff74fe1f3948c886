// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package logging provides centralized zerolog-based logging for ReportKit.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})

	logging.Info().Msg("Server starting")
	logging.Error().Err(err).Msg("Operation failed")

	// With context fields (request_id, correlation_id, report_id)
	ctx = logging.ContextWithReportID(ctx, reportID)
	logging.Ctx(ctx).Info().Str("chart_type", "funnel").Msg("Chart rendered")

# slog Bridge

Libraries that only accept *slog.Logger, such as sutureslog, are given
NewSlogLogger so that their output goes through the same zerolog writer.

# Conventions

Always terminate log chains with .Msg() or .Send(), and prefer structured
fields over Msgf.
*/
package logging
