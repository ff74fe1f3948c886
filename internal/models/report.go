// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// ChartType identifies how a report is rendered.
type ChartType string

const (
	ChartLinear     ChartType = "linear"
	ChartBar        ChartType = "bar"
	ChartArea       ChartType = "area"
	ChartPie        ChartType = "pie"
	ChartHistogram  ChartType = "histogram"
	ChartMetric     ChartType = "metric"
	ChartFunnel     ChartType = "funnel"
	ChartConversion ChartType = "conversion"
	ChartRetention  ChartType = "retention"
	ChartSankey     ChartType = "sankey"
	ChartMap        ChartType = "map"
)

// ChartTypes lists every supported chart type in display order.
var ChartTypes = []ChartType{
	ChartLinear, ChartBar, ChartHistogram, ChartPie, ChartMetric, ChartArea,
	ChartMap, ChartFunnel, ChartRetention, ChartConversion, ChartSankey,
}

// Valid reports whether c is a known chart type.
func (c ChartType) Valid() bool {
	for _, t := range ChartTypes {
		if t == c {
			return true
		}
	}
	return false
}

// SupportsBreakdowns reports whether the query layer honors breakdowns for c.
func (c ChartType) SupportsBreakdowns() bool {
	return c != ChartRetention && c != ChartSankey
}

// SupportsPrevious reports whether a previous-period comparison can be computed for c.
func (c ChartType) SupportsPrevious() bool {
	return c != ChartRetention && c != ChartSankey
}

// Interval is the bucket width of a time series.
type Interval string

const (
	IntervalMinute Interval = "minute"
	IntervalHour   Interval = "hour"
	IntervalDay    Interval = "day"
	IntervalWeek   Interval = "week"
	IntervalMonth  Interval = "month"
)

// Intervals lists every interval from narrowest to widest.
var Intervals = []Interval{IntervalMinute, IntervalHour, IntervalDay, IntervalWeek, IntervalMonth}

// Valid reports whether i is a known interval.
func (i Interval) Valid() bool {
	switch i {
	case IntervalMinute, IntervalHour, IntervalDay, IntervalWeek, IntervalMonth:
		return true
	}
	return false
}

// DateRange is a named reporting window.
type DateRange string

const (
	Range30Min       DateRange = "30min"
	RangeLastHour    DateRange = "lastHour"
	RangeToday       DateRange = "today"
	RangeYesterday   DateRange = "yesterday"
	Range7Days       DateRange = "7d"
	Range30Days      DateRange = "30d"
	Range6Months     DateRange = "6m"
	Range12Months    DateRange = "12m"
	RangeMonthToDate DateRange = "monthToDate"
	RangeLastMonth   DateRange = "lastMonth"
	RangeYearToDate  DateRange = "yearToDate"
	RangeLastYear    DateRange = "lastYear"
	RangeCustom      DateRange = "custom"
)

// DateRanges lists every named range.
var DateRanges = []DateRange{
	Range30Min, RangeLastHour, RangeToday, RangeYesterday, Range7Days, Range30Days,
	Range6Months, Range12Months, RangeMonthToDate, RangeLastMonth, RangeYearToDate,
	RangeLastYear, RangeCustom,
}

// Valid reports whether r is a known range.
func (r DateRange) Valid() bool {
	for _, v := range DateRanges {
		if v == r {
			return true
		}
	}
	return false
}

// Live reports whether r ends at the current instant, so its last bucket is
// still filling and results for it go stale within one live interval.
func (r DateRange) Live() bool {
	switch r {
	case RangeToday, RangeLastHour, Range30Min:
		return true
	}
	return false
}

// Metric selects which per-serie aggregate is shown as the headline value.
type Metric string

const (
	MetricCount   Metric = "count"
	MetricSum     Metric = "sum"
	MetricAverage Metric = "average"
	MetricMin     Metric = "min"
	MetricMax     Metric = "max"
)

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricCount, MetricSum, MetricAverage, MetricMin, MetricMax:
		return true
	}
	return false
}

// LineType is the interpolation used by line and area charts.
type LineType string

const (
	LineMonotone   LineType = "monotone"
	LineMonotoneX  LineType = "monotoneX"
	LineMonotoneY  LineType = "monotoneY"
	LineLinear     LineType = "linear"
	LineNatural    LineType = "natural"
	LineBasis      LineType = "basis"
	LineStep       LineType = "step"
	LineStepBefore LineType = "stepBefore"
	LineStepAfter  LineType = "stepAfter"
	LineBump       LineType = "bump"
)

// Segment selects what is counted for an event series.
type Segment string

const (
	SegmentEvent           Segment = "event"
	SegmentUser            Segment = "user"
	SegmentSession         Segment = "session"
	SegmentUserAverage     Segment = "user_average"
	SegmentOneEventPerUser Segment = "one_event_per_user"
	SegmentPropertySum     Segment = "property_sum"
	SegmentPropertyAverage Segment = "property_average"
	SegmentPropertyMax     Segment = "property_max"
	SegmentPropertyMin     Segment = "property_min"
)

// Valid reports whether s is a known segment.
func (s Segment) Valid() bool {
	switch s {
	case SegmentEvent, SegmentUser, SegmentSession, SegmentUserAverage, SegmentOneEventPerUser,
		SegmentPropertySum, SegmentPropertyAverage, SegmentPropertyMax, SegmentPropertyMin:
		return true
	}
	return false
}

// Operator is a filter comparison.
type Operator string

const (
	OperatorIs             Operator = "is"
	OperatorIsNot          Operator = "isNot"
	OperatorContains       Operator = "contains"
	OperatorDoesNotContain Operator = "doesNotContain"
	OperatorStartsWith     Operator = "startsWith"
	OperatorEndsWith       Operator = "endsWith"
	OperatorRegex          Operator = "regex"
	OperatorIsNull         Operator = "isNull"
	OperatorIsNotNull      Operator = "isNotNull"
	OperatorGT             Operator = "gt"
	OperatorLT             Operator = "lt"
	OperatorGTE            Operator = "gte"
	OperatorLTE            Operator = "lte"
)

// Filter narrows an event series by a property.
type Filter struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Operator Operator `json:"operator"`
	Value    []string `json:"value"`
}

// Breakdown splits a series by the values of a property.
type Breakdown struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReportDefinition is the complete, persistable configuration of a report.
// Ready and Dirty are session-local and are never persisted.
type ReportDefinition struct {
	Name       string      `json:"name" validate:"max=200"`
	ChartType  ChartType   `json:"chart_type" validate:"required,charttype"`
	LineType   LineType    `json:"line_type"`
	Interval   Interval    `json:"interval" validate:"required,interval"`
	Series     SeriesList  `json:"series" validate:"max=50"`
	Breakdowns []Breakdown `json:"breakdowns" validate:"max=10"`
	Range      DateRange   `json:"range" validate:"required,daterange"`
	StartDate  *time.Time  `json:"start_date,omitempty" validate:"required_if=Range custom"`
	EndDate    *time.Time  `json:"end_date,omitempty" validate:"required_if=Range custom"`
	Previous   bool        `json:"previous"`
	Formula    string      `json:"formula,omitempty" validate:"max=1000"`
	Unit       string      `json:"unit,omitempty" validate:"max=32"`
	Metric     Metric      `json:"metric" validate:"omitempty,metric"`
	Limit      int         `json:"limit" validate:"min=0,max=10000"`
	Options    Options     `json:"-"`
	Ready      bool        `json:"ready"`
	Dirty      bool        `json:"dirty"`
}

type reportAlias ReportDefinition

// MarshalJSON encodes the definition with its options as a type-tagged object.
func (d ReportDefinition) MarshalJSON() ([]byte, error) {
	opts, err := MarshalOptions(d.Options)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		reportAlias
		Options json.RawMessage `json:"options,omitempty"`
	}{reportAlias(d), opts})
}

// UnmarshalJSON decodes the definition, resolving the options variant from its type tag.
func (d *ReportDefinition) UnmarshalJSON(data []byte) error {
	aux := struct {
		*reportAlias
		Options json.RawMessage `json:"options"`
	}{reportAlias: (*reportAlias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	opts, err := UnmarshalOptions(aux.Options)
	if err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	d.Options = opts
	return nil
}

// Clone returns a deep copy of d that shares no slices or pointers with it.
func (d ReportDefinition) Clone() ReportDefinition {
	out := d
	out.Series = d.Series.Clone()
	if d.Breakdowns != nil {
		out.Breakdowns = make([]Breakdown, len(d.Breakdowns))
		copy(out.Breakdowns, d.Breakdowns)
	}
	if d.StartDate != nil {
		t := *d.StartDate
		out.StartDate = &t
	}
	if d.EndDate != nil {
		t := *d.EndDate
		out.EndDate = &t
	}
	out.Options = CloneOptions(d.Options)
	return out
}
