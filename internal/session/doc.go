// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package session owns an editable report and the result of querying it.

A Session holds exactly one report definition and one result. Actions go
through Dispatch, which applies them with the report reducer in call order.
Every action that changes the query payload advances a generation counter:

	s := session.New(id, def, querier, session.OptionsFromConfig(cfg.Report))
	s.Dispatch(report.ChangeInterval{Interval: models.IntervalWeek})
	if err := s.Refresh(ctx); errors.Is(err, session.ErrStale) {
		// the definition moved on while the query ran
	}
	view := s.Chart(time.Now(), chart.DefaultVisibleCap)

Refresh snapshots the generation, queries without holding the lock, and
commits only if the generation is unchanged. Results move through Idle
(lazy sessions before their first refresh), Loading, Empty, Error and
Success. Chart renders a placeholder while idle or loading and never
transforms absent or failed data.

Formula text and display names are typed by users one key at a time, so
SetFormula and SetDisplayName debounce per item and field before
dispatching a ChangeEvent.

Manager keeps one session per report id for the HTTP API and the live
refresher.
*/
package session
