// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package report

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/reportkit/internal/models"
)

// Defaults for a freshly initialized report.
const (
	DefaultName  = ""
	DefaultLimit = 500
)

// Initial returns the not-ready definition a report session starts from.
func Initial() models.ReportDefinition {
	return models.ReportDefinition{
		Name:       DefaultName,
		ChartType:  models.ChartLinear,
		LineType:   models.LineMonotone,
		Interval:   models.IntervalDay,
		Series:     models.SeriesList{},
		Breakdowns: []models.Breakdown{},
		Range:      models.Range30Days,
		Previous:   false,
		Metric:     models.MetricSum,
		Limit:      DefaultLimit,
	}
}

// NewShortID returns a short random identifier for series items,
// filters and breakdowns.
func NewShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// Reducer applies actions to report definitions. The zero value is ready
// to use and generates ids with NewShortID.
type Reducer struct {
	// NewID overrides id generation, mainly for deterministic tests.
	NewID func() string
}

var defaultReducer Reducer

// Apply applies action to def using the default Reducer.
func Apply(def models.ReportDefinition, action Action) models.ReportDefinition {
	return defaultReducer.Apply(def, action)
}

// Apply returns the definition that results from applying action to def.
// It never mutates def and never fails: inconsistent state left behind by
// an edit is corrected in place, and unknown actions return def unchanged.
func (r Reducer) Apply(def models.ReportDefinition, action Action) models.ReportDefinition {
	next := def.Clone()

	switch a := action.(type) {
	case Reset:
		return Initial()
	case Ready:
		out := Initial()
		out.Ready = true
		return out
	case SetReport:
		next = a.Report.Clone()
		if next.Range != models.RangeCustom {
			next.StartDate = nil
			next.EndDate = nil
		}
		if next.Series == nil {
			next.Series = models.SeriesList{}
		}
		if next.Breakdowns == nil {
			next.Breakdowns = []models.Breakdown{}
		}
		next.Dirty = false
		next.Ready = true
	case ResetDirty:
		next.Dirty = false

	case SetName:
		next.Name = a.Name
	case AddSerie:
		if a.Item != nil {
			next.Series = append(next.Series, r.withItemID(a.Item, r.uniqueSeriesID(next.Series)))
		}
	case DuplicateEvent:
		if a.Item != nil {
			next.Series = append(next.Series, r.duplicate(a.Item, next.Series))
		}
	case RemoveEvent:
		kept := make(models.SeriesList, 0, len(next.Series))
		for _, item := range next.Series {
			if item.ItemID() != a.ID {
				kept = append(kept, item)
			}
		}
		next.Series = kept
	case ChangeEvent:
		if a.Item != nil {
			if i := next.Series.IndexOf(a.Item.ItemID()); i >= 0 {
				next.Series[i] = models.CloneSeriesItem(a.Item)
			}
		}
	case ReorderEvents:
		next.Series = MoveElement(next.Series, a.From, a.To)
	case AddBreakdown:
		b := a.Breakdown
		b.ID = r.uniqueBreakdownID(next.Breakdowns)
		next.Breakdowns = append(next.Breakdowns, b)
	case RemoveBreakdown:
		kept := make([]models.Breakdown, 0, len(next.Breakdowns))
		for _, b := range next.Breakdowns {
			if b.ID != a.ID {
				kept = append(kept, b)
			}
		}
		next.Breakdowns = kept
	case ChangeBreakdown:
		for i, b := range next.Breakdowns {
			if b.ID == a.Breakdown.ID {
				next.Breakdowns[i] = a.Breakdown
			}
		}

	case ChangeChartType:
		next.ChartType = a.Type
		defaults := DefaultOptionsFor(a.Type)
		switch {
		case defaults == nil:
			next.Options = nil
		case next.Options == nil || next.Options.Type() != a.Type:
			next.Options = defaults
		}
	case ChangeInterval:
		next.Interval = a.Interval
	case ChangeDateRanges:
		next.Range = a.Range
		if a.Range != models.RangeCustom {
			next.StartDate = nil
			next.EndDate = nil
			next.Interval = DefaultIntervalForRange(a.Range)
		}
	case ChangeStartDate:
		next.StartDate = copyTime(a.Date)
		if i, ok := IntervalFromDates(next.StartDate, next.EndDate); ok {
			next.Interval = i
		}
	case ChangeEndDate:
		next.EndDate = copyTime(a.Date)
		if i, ok := IntervalFromDates(next.StartDate, next.EndDate); ok {
			next.Interval = i
		}
	case ChangePrevious:
		next.Previous = a.Previous
	case ChangeLineType:
		next.LineType = a.LineType
	case ChangeFormula:
		next.Formula = a.Formula
	case ChangeUnit:
		next.Unit = a.Unit
	case ChangeMetric:
		next.Metric = a.Metric
	case ChangeLimit:
		next.Limit = a.Limit
	case ChangeOptions:
		next.Options = models.CloneOptions(a.Options)

	case ChangeCriteria:
		o := retentionOptions(next)
		o.Criteria = a.Criteria
		next.Options = o
	case ChangeFunnelGroup:
		o := funnelOptions(next)
		o.FunnelGroup = copyPtr(a.Group)
		next.Options = o
	case ChangeFunnelWindow:
		o := funnelOptions(next)
		o.FunnelWindow = copyPtr(a.Window)
		next.Options = o
	case ChangeSankeyMode:
		o := sankeyOptions(next)
		o.Mode = a.Mode
		next.Options = o
	case ChangeSankeySteps:
		o := sankeyOptions(next)
		o.Steps = ClampSankeySteps(a.Steps)
		next.Options = o
	case ChangeSankeyExclude:
		o := sankeyOptions(next)
		o.Exclude = append([]string{}, a.Exclude...)
		next.Options = o
	case ChangeSankeyInclude:
		o := sankeyOptions(next)
		if a.Include == nil {
			o.Include = nil
		} else {
			o.Include = append([]string{}, a.Include...)
		}
		next.Options = o
	case ChangeStacked:
		o := histogramOptions(next)
		o.Stacked = a.Stacked
		next.Options = o

	default:
		return next
	}

	if marksDirty(action) {
		next.Dirty = true
	}
	normalizeOptions(&next)
	next.Interval = NormalizeInterval(next.Interval, next.Range)
	return next
}

func (r Reducer) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return NewShortID()
}

func (r Reducer) uniqueSeriesID(list models.SeriesList) string {
	for {
		id := r.newID()
		if list.IndexOf(id) < 0 {
			return id
		}
	}
}

func (r Reducer) uniqueBreakdownID(list []models.Breakdown) string {
	for {
		id := r.newID()
		taken := false
		for _, b := range list {
			if b.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

// withItemID returns a copy of item carrying id.
func (r Reducer) withItemID(item models.SeriesItem, id string) models.SeriesItem {
	switch v := models.CloneSeriesItem(item).(type) {
	case models.EventItem:
		v.ID = id
		return v
	case models.FormulaItem:
		v.ID = id
		return v
	}
	return item
}

// duplicate copies item under a fresh id. Event filters get fresh ids too.
func (r Reducer) duplicate(item models.SeriesItem, list models.SeriesList) models.SeriesItem {
	dup := r.withItemID(item, r.uniqueSeriesID(list))
	if e, ok := dup.(models.EventItem); ok {
		for i := range e.Filters {
			e.Filters[i].ID = r.newID()
		}
		return e
	}
	return dup
}
