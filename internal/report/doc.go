// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package report implements the report-definition state machine.

Apply is a pure (definition, action) -> definition function. It never
mutates its input, never fails, and after every action restores two
invariants:

  - options, when set, belong to the current chart type
  - the interval is legal for the current range (see NormalizeInterval)

Interval legality by range:

	range               minute  hour  week  month
	30min, lastHour     yes     yes   no    no
	today, yesterday    no      yes   no    no
	7d                  no      yes   no    yes
	30d and wider       no      no    yes   yes
	custom              yes     yes   yes   yes

Typical use:

	def := report.Apply(report.Initial(), report.Ready{})
	def = report.Apply(def, report.ChangeChartType{Type: models.ChartSankey})
	def = report.Apply(def, report.ChangeSankeySteps{Steps: 7})

Wire payloads are converted to typed actions with DecodeAction.
*/
package report
