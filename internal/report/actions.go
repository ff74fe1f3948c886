// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package report

import (
	"time"

	"github.com/tomtom215/reportkit/internal/models"
)

// Action is a single edit applied to a report definition by the reducer.
type Action interface {
	// ActionType is the stable wire name of the action.
	ActionType() string
}

// Lifecycle actions. These do not mark the definition dirty.
type (
	// Reset discards the definition and returns the initial, not-ready state.
	Reset struct{}
	// Ready initializes a fresh definition from defaults.
	Ready struct{}
	// SetReport loads a saved report.
	SetReport struct{ Report models.ReportDefinition }
	// ResetDirty acknowledges a save.
	ResetDirty struct{}
)

// Series and breakdown edits.
type (
	SetName struct{ Name string }
	// AddSerie appends Item under a freshly generated id.
	AddSerie struct{ Item models.SeriesItem }
	// DuplicateEvent appends a copy of Item with fresh ids for it and its filters.
	DuplicateEvent struct{ Item models.SeriesItem }
	RemoveEvent    struct{ ID string }
	// ChangeEvent replaces the item sharing Item's id.
	ChangeEvent     struct{ Item models.SeriesItem }
	ReorderEvents   struct{ From, To int }
	AddBreakdown    struct{ Breakdown models.Breakdown }
	RemoveBreakdown struct{ ID string }
	ChangeBreakdown struct{ Breakdown models.Breakdown }
)

// Scalar field edits.
type (
	ChangeChartType  struct{ Type models.ChartType }
	ChangeInterval   struct{ Interval models.Interval }
	ChangeDateRanges struct{ Range models.DateRange }
	ChangeStartDate  struct{ Date *time.Time }
	ChangeEndDate    struct{ Date *time.Time }
	ChangePrevious   struct{ Previous bool }
	ChangeLineType   struct{ LineType models.LineType }
	ChangeFormula    struct{ Formula string }
	// ChangeUnit sets the display unit. An empty Unit clears it.
	ChangeUnit    struct{ Unit string }
	ChangeMetric  struct{ Metric models.Metric }
	ChangeLimit   struct{ Limit int }
	ChangeOptions struct{ Options models.Options }
)

// Options mutators. Each installs a fresh block of its family when the
// current options are absent or belong to another family.
type (
	ChangeCriteria      struct{ Criteria models.Criteria }
	ChangeFunnelGroup   struct{ Group *string }
	ChangeFunnelWindow  struct{ Window *float64 }
	ChangeSankeyMode    struct{ Mode models.SankeyMode }
	ChangeSankeySteps   struct{ Steps int }
	ChangeSankeyExclude struct{ Exclude []string }
	ChangeSankeyInclude struct{ Include []string }
	ChangeStacked       struct{ Stacked bool }
)

func (Reset) ActionType() string      { return "reset" }
func (Ready) ActionType() string      { return "ready" }
func (SetReport) ActionType() string  { return "setReport" }
func (ResetDirty) ActionType() string { return "resetDirty" }

func (SetName) ActionType() string         { return "setName" }
func (AddSerie) ActionType() string        { return "addSerie" }
func (DuplicateEvent) ActionType() string  { return "duplicateEvent" }
func (RemoveEvent) ActionType() string     { return "removeEvent" }
func (ChangeEvent) ActionType() string     { return "changeEvent" }
func (ReorderEvents) ActionType() string   { return "reorderEvents" }
func (AddBreakdown) ActionType() string    { return "addBreakdown" }
func (RemoveBreakdown) ActionType() string { return "removeBreakdown" }
func (ChangeBreakdown) ActionType() string { return "changeBreakdown" }

func (ChangeChartType) ActionType() string  { return "changeChartType" }
func (ChangeInterval) ActionType() string   { return "changeInterval" }
func (ChangeDateRanges) ActionType() string { return "changeDateRanges" }
func (ChangeStartDate) ActionType() string  { return "changeStartDate" }
func (ChangeEndDate) ActionType() string    { return "changeEndDate" }
func (ChangePrevious) ActionType() string   { return "changePrevious" }
func (ChangeLineType) ActionType() string   { return "changeLineType" }
func (ChangeFormula) ActionType() string    { return "changeFormula" }
func (ChangeUnit) ActionType() string       { return "changeUnit" }
func (ChangeMetric) ActionType() string     { return "changeMetric" }
func (ChangeLimit) ActionType() string      { return "changeLimit" }
func (ChangeOptions) ActionType() string    { return "changeOptions" }

func (ChangeCriteria) ActionType() string      { return "changeCriteria" }
func (ChangeFunnelGroup) ActionType() string   { return "changeFunnelGroup" }
func (ChangeFunnelWindow) ActionType() string  { return "changeFunnelWindow" }
func (ChangeSankeyMode) ActionType() string    { return "changeSankeyMode" }
func (ChangeSankeySteps) ActionType() string   { return "changeSankeySteps" }
func (ChangeSankeyExclude) ActionType() string { return "changeSankeyExclude" }
func (ChangeSankeyInclude) ActionType() string { return "changeSankeyInclude" }
func (ChangeStacked) ActionType() string       { return "changeStacked" }

// marksDirty reports whether applying a marks the definition dirty.
func marksDirty(a Action) bool {
	switch a.(type) {
	case Reset, Ready, SetReport, ResetDirty:
		return false
	}
	return true
}
