// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// testJSONRoundTrip marshals the input, unmarshals it back, and calls the verification function.
func testJSONRoundTrip[T any](t *testing.T, name string, input T, verify func(t *testing.T, decoded T)) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		data, err := json.Marshal(input)
		if err != nil {
			t.Fatalf("Failed to marshal %s: %v", name, err)
		}

		var decoded T
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Failed to unmarshal %s: %v\n%s", name, err, data)
		}

		if verify != nil {
			verify(t, decoded)
		}
	})
}

func createTestReport() ReportDefinition {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return ReportDefinition{
		Name:      "Signups",
		ChartType: ChartSankey,
		LineType:  LineMonotone,
		Interval:  IntervalDay,
		Series: SeriesList{
			EventItem{ID: "a1", Name: "signup", Segment: SegmentUser, Filters: []Filter{
				{ID: "f1", Name: "country", Operator: OperatorIs, Value: []string{"SE"}},
			}},
			FormulaItem{ID: "b2", Formula: "A*2", DisplayName: "Double"},
		},
		Breakdowns: []Breakdown{{ID: "x", Name: "country"}},
		Range:      RangeCustom,
		StartDate:  &start,
		Metric:     MetricSum,
		Limit:      500,
		Options:    SankeyOptions{Mode: SankeyAfter, Steps: 5, Exclude: []string{"ping"}},
	}
}

func TestReportDefinitionJSON(t *testing.T) {
	t.Parallel()

	testJSONRoundTrip(t, "sankey report", createTestReport(), func(t *testing.T, decoded ReportDefinition) {
		opts, ok := decoded.Options.(SankeyOptions)
		if !ok {
			t.Fatalf("Expected SankeyOptions, got %T", decoded.Options)
		}
		if opts.Mode != SankeyAfter || opts.Steps != 5 {
			t.Errorf("Expected mode after/5 steps, got %s/%d", opts.Mode, opts.Steps)
		}
		if len(opts.Exclude) != 1 || opts.Exclude[0] != "ping" {
			t.Errorf("Expected exclude [ping], got %v", opts.Exclude)
		}
		if len(decoded.Series) != 2 {
			t.Fatalf("Expected 2 series items, got %d", len(decoded.Series))
		}
		if _, ok := decoded.Series[0].(EventItem); !ok {
			t.Errorf("Expected series[0] to be EventItem, got %T", decoded.Series[0])
		}
		f, ok := decoded.Series[1].(FormulaItem)
		if !ok {
			t.Fatalf("Expected series[1] to be FormulaItem, got %T", decoded.Series[1])
		}
		if f.Formula != "A*2" {
			t.Errorf("Expected formula A*2, got %s", f.Formula)
		}
		if decoded.StartDate == nil || !decoded.StartDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Expected start date to survive, got %v", decoded.StartDate)
		}
	})

	plain := createTestReport()
	plain.ChartType = ChartLinear
	plain.Options = nil
	testJSONRoundTrip(t, "no options", plain, func(t *testing.T, decoded ReportDefinition) {
		if decoded.Options != nil {
			t.Errorf("Expected nil options, got %#v", decoded.Options)
		}
	})
}

func TestReportDefinitionJSON_OmitsNilOptions(t *testing.T) {
	t.Parallel()

	def := createTestReport()
	def.Options = nil
	data, err := json.Marshal(def)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), `"options"`) {
		t.Errorf("Expected options key to be omitted, got %s", data)
	}
}

func TestUnmarshalOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    ChartType
		wantNil bool
		wantErr bool
	}{
		{name: "null", input: "null", wantNil: true},
		{name: "empty", input: "", wantNil: true},
		{name: "funnel", input: `{"type":"funnel","funnel_window":12}`, want: ChartFunnel},
		{name: "retention", input: `{"type":"retention","criteria":"on"}`, want: ChartRetention},
		{name: "sankey", input: `{"type":"sankey","mode":"before","steps":3}`, want: ChartSankey},
		{name: "histogram", input: `{"type":"histogram","stacked":true}`, want: ChartHistogram},
		{name: "unknown type", input: `{"type":"linear"}`, wantErr: true},
		{name: "missing type", input: `{"stacked":true}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalOptions([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %#v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("Expected nil, got %#v", got)
				}
				return
			}
			if got.Type() != tt.want {
				t.Errorf("Expected type %s, got %s", tt.want, got.Type())
			}
		})
	}
}

func TestUnmarshalOptions_SankeyExcludeNeverNil(t *testing.T) {
	t.Parallel()

	got, err := UnmarshalOptions([]byte(`{"type":"sankey","mode":"after","steps":5}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s := got.(SankeyOptions)
	if s.Exclude == nil {
		t.Error("Expected non-nil exclude slice")
	}
	if s.Include != nil {
		t.Errorf("Expected nil include, got %v", s.Include)
	}
}

func TestSeriesList_UntaggedDefaultsToEvent(t *testing.T) {
	t.Parallel()

	var list SeriesList
	if err := json.Unmarshal([]byte(`[{"id":"a","name":"page_view","segment":"event","filters":[]}]`), &list); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(list))
	}
	if list[0].ItemType() != SeriesItemEvent {
		t.Errorf("Expected event item, got %s", list[0].ItemType())
	}

	if err := json.Unmarshal([]byte(`[{"type":"chart","id":"a"}]`), &list); err == nil {
		t.Error("Expected error for unknown item type")
	}
}

func TestReportDefinitionClone(t *testing.T) {
	t.Parallel()

	orig := createTestReport()
	clone := orig.Clone()

	clone.Series[0].(EventItem).Filters[0].Value[0] = "NO"
	clone.Breakdowns[0].Name = "browser"
	clone.Options.(SankeyOptions).Exclude[0] = "other"
	*clone.StartDate = clone.StartDate.Add(time.Hour)

	if orig.Series[0].(EventItem).Filters[0].Value[0] != "SE" {
		t.Error("Expected filter values not to be shared")
	}
	if orig.Breakdowns[0].Name != "country" {
		t.Error("Expected breakdowns not to be shared")
	}
	if orig.Options.(SankeyOptions).Exclude[0] != "ping" {
		t.Error("Expected sankey exclude not to be shared")
	}
	if orig.StartDate.Hour() != 0 {
		t.Error("Expected start date not to be shared")
	}
}

func TestSeriesItemLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		item SeriesItem
		want string
	}{
		{"event name", EventItem{Name: "signup"}, "signup"},
		{"event display name", EventItem{Name: "signup", DisplayName: "Signups"}, "Signups"},
		{"formula", FormulaItem{Formula: "A/B"}, "A/B"},
		{"formula display name", FormulaItem{Formula: "A/B", DisplayName: "Ratio"}, "Ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Label(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSerieMetricsValue(t *testing.T) {
	t.Parallel()

	m := SerieMetrics{Sum: 10, Average: 2.5, Min: 1, Max: 4, Count: 4}
	cases := map[Metric]float64{
		MetricSum: 10, MetricAverage: 2.5, MetricMin: 1, MetricMax: 4, MetricCount: 4, "": 10,
	}
	for metric, want := range cases {
		if got := m.Value(metric); got != want {
			t.Errorf("Value(%q): expected %v, got %v", metric, want, got)
		}
	}
}

func TestDateRangeLive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		r    DateRange
		want bool
	}{
		{RangeToday, true},
		{RangeLastHour, true},
		{Range30Min, true},
		{RangeYesterday, false},
		{Range30Days, false},
		{RangeCustom, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			if got := tt.r.Live(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
