// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package models

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Options is the chart-type specific configuration block of a report.
// Exactly one concrete type exists per chart family; Type returns the
// chart type the block belongs to.
type Options interface {
	Type() ChartType
}

// Funnel defaults applied when the corresponding option is unset.
const (
	DefaultFunnelGroup       = "session_id"
	DefaultFunnelWindowHours = 24.0
)

// FunnelOptions configures how funnel steps are grouped and windowed.
type FunnelOptions struct {
	// FunnelGroup is session_id or profile_id. Nil means DefaultFunnelGroup.
	FunnelGroup *string `json:"funnel_group,omitempty"`
	// FunnelWindow is the conversion window in hours. Nil means DefaultFunnelWindowHours.
	FunnelWindow *float64 `json:"funnel_window,omitempty"`
}

func (FunnelOptions) Type() ChartType { return ChartFunnel }

// Group returns the effective funnel group.
func (o FunnelOptions) Group() string {
	if o.FunnelGroup == nil || *o.FunnelGroup == "" {
		return DefaultFunnelGroup
	}
	return *o.FunnelGroup
}

// WindowHours returns the effective funnel window.
func (o FunnelOptions) WindowHours() float64 {
	if o.FunnelWindow == nil || *o.FunnelWindow <= 0 {
		return DefaultFunnelWindowHours
	}
	return *o.FunnelWindow
}

// Criteria selects whether a retained user must return exactly on, or on or after, a period.
type Criteria string

const (
	CriteriaOn        Criteria = "on"
	CriteriaOnOrAfter Criteria = "on_or_after"
)

// RetentionOptions configures cohort retention.
type RetentionOptions struct {
	Criteria Criteria `json:"criteria"`
}

func (RetentionOptions) Type() ChartType { return ChartRetention }

// SankeyMode selects the direction a user journey is explored from.
type SankeyMode string

const (
	SankeyBefore  SankeyMode = "before"
	SankeyAfter   SankeyMode = "after"
	SankeyBetween SankeyMode = "between"
)

// Sankey step bounds.
const (
	SankeyMinSteps     = 2
	SankeyMaxSteps     = 10
	SankeyDefaultSteps = 5
)

// SankeyOptions configures user journey flows. A nil Include means
// "all events"; an empty non-nil Include is preserved as given.
type SankeyOptions struct {
	Mode    SankeyMode `json:"mode"`
	Steps   int        `json:"steps"`
	Exclude []string   `json:"exclude"`
	Include []string   `json:"include,omitempty"`
}

func (SankeyOptions) Type() ChartType { return ChartSankey }

// HistogramOptions configures histogram stacking.
type HistogramOptions struct {
	Stacked bool `json:"stacked"`
}

func (HistogramOptions) Type() ChartType { return ChartHistogram }

// MarshalOptions encodes o as an object carrying a "type" tag. A nil o encodes as nil.
func MarshalOptions(o Options) ([]byte, error) {
	if o == nil {
		return nil, nil
	}
	var body any
	switch v := o.(type) {
	case FunnelOptions:
		body = struct {
			Type ChartType `json:"type"`
			FunnelOptions
		}{v.Type(), v}
	case RetentionOptions:
		body = struct {
			Type ChartType `json:"type"`
			RetentionOptions
		}{v.Type(), v}
	case SankeyOptions:
		if v.Exclude == nil {
			v.Exclude = []string{}
		}
		body = struct {
			Type ChartType `json:"type"`
			SankeyOptions
		}{v.Type(), v}
	case HistogramOptions:
		body = struct {
			Type ChartType `json:"type"`
			HistogramOptions
		}{v.Type(), v}
	default:
		return nil, fmt.Errorf("unsupported options type %T", o)
	}
	return json.Marshal(body)
}

// UnmarshalOptions decodes a type-tagged options object. Empty input and
// JSON null decode to nil.
func UnmarshalOptions(data []byte) (Options, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	var head struct {
		Type ChartType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case ChartFunnel:
		var o FunnelOptions
		err := json.Unmarshal(data, &o)
		return o, err
	case ChartRetention:
		var o RetentionOptions
		err := json.Unmarshal(data, &o)
		return o, err
	case ChartSankey:
		var o SankeyOptions
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, err
		}
		if o.Exclude == nil {
			o.Exclude = []string{}
		}
		return o, nil
	case ChartHistogram:
		var o HistogramOptions
		err := json.Unmarshal(data, &o)
		return o, err
	}
	return nil, fmt.Errorf("unknown options type %q", head.Type)
}

// CloneOptions deep-copies o.
func CloneOptions(o Options) Options {
	switch v := o.(type) {
	case FunnelOptions:
		if v.FunnelGroup != nil {
			g := *v.FunnelGroup
			v.FunnelGroup = &g
		}
		if v.FunnelWindow != nil {
			w := *v.FunnelWindow
			v.FunnelWindow = &w
		}
		return v
	case SankeyOptions:
		v.Exclude = cloneStrings(v.Exclude)
		v.Include = cloneStrings(v.Include)
		return v
	}
	return o
}
