// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package validation

import (
	"strings"
	"testing"
)

type reportStruct struct {
	Name      string `json:"name" validate:"max=20"`
	ChartType string `json:"chart_type" validate:"required,charttype"`
	Interval  string `json:"interval" validate:"required,interval"`
	Range     string `json:"range" validate:"required,daterange"`
	Metric    string `json:"metric,omitempty" validate:"omitempty,metric"`
	Segment   string `json:"segment,omitempty" validate:"omitempty,segment"`
	Limit     int    `json:"limit" validate:"min=0,max=10000"`
	Internal  string `json:"-" validate:"max=3"`
}

func validReport() reportStruct {
	return reportStruct{
		Name:      "Signups",
		ChartType: "linear",
		Interval:  "day",
		Range:     "30d",
		Metric:    "sum",
		Segment:   "user",
		Limit:     500,
	}
}

type nonStringEnum struct {
	ChartType int `validate:"charttype"`
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if v := GetValidator(); v == nil || v != GetValidator() {
		t.Error("Expected one shared validator instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*reportStruct)
	}{
		{"all valid fields", func(*reportStruct) {}},
		{"optional enums empty", func(r *reportStruct) { r.Metric, r.Segment = "", "" }},
		{"funnel over custom range", func(r *reportStruct) { r.ChartType, r.Range = "funnel", "custom" }},
		{"minute interval", func(r *reportStruct) { r.Interval, r.Range = "minute", "30min" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			input := validReport()
			tt.mutate(&input)
			if err := ValidateStruct(&input); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*reportStruct)
		wantField string
		wantTag   string
	}{
		{"missing chart type", func(r *reportStruct) { r.ChartType = "" }, "chart_type", "required"},
		{"unknown chart type", func(r *reportStruct) { r.ChartType = "donut" }, "chart_type", "charttype"},
		{"unknown interval", func(r *reportStruct) { r.Interval = "fortnight" }, "interval", "interval"},
		{"unknown range", func(r *reportStruct) { r.Range = "90d" }, "range", "daterange"},
		{"unknown metric", func(r *reportStruct) { r.Metric = "median" }, "metric", "metric"},
		{"unknown segment", func(r *reportStruct) { r.Segment = "device" }, "segment", "segment"},
		{"name too long", func(r *reportStruct) { r.Name = strings.Repeat("x", 21) }, "name", "max"},
		{"negative limit", func(r *reportStruct) { r.Limit = -1 }, "limit", "min"},
		{"untagged field keeps go name", func(r *reportStruct) { r.Internal = "toolong" }, "Internal", "max"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			input := validReport()
			tt.mutate(&input)

			err := ValidateStruct(&input)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			for _, fe := range err.Errors() {
				if fe.Field == tt.wantField && fe.Tag == tt.wantTag {
					return
				}
			}
			t.Errorf("Expected error on %s with tag %s, got %+v", tt.wantField, tt.wantTag, err.Errors())
		})
	}
}

func TestValidateStruct_NonStringEnum(t *testing.T) {
	t.Parallel()

	if err := ValidateStruct(&nonStringEnum{ChartType: 1}); err == nil {
		t.Error("Expected report tags to reject non-string fields")
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	t.Run("single failure", func(t *testing.T) {
		input := validReport()
		input.Interval = "fortnight"

		apiErr := ValidateStruct(&input).ToAPIError()
		if apiErr.Code != CodeValidation {
			t.Errorf("Expected code %s, got %s", CodeValidation, apiErr.Code)
		}
		if apiErr.Message != "interval must be one of: minute hour day week month" {
			t.Errorf("Expected interval message, got %q", apiErr.Message)
		}
		if apiErr.Details["field"] != "interval" || apiErr.Details["value"] != "fortnight" {
			t.Errorf("Expected field and value in details, got %v", apiErr.Details)
		}
	})

	t.Run("several failures", func(t *testing.T) {
		input := validReport()
		input.ChartType = "donut"
		input.Range = "90d"

		apiErr := ValidateStruct(&input).ToAPIError()
		want := "chart_type must be a known chart type; range must be a known date range"
		if apiErr.Message != want {
			t.Errorf("Expected %q, got %q", want, apiErr.Message)
		}
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok || len(fields) != 2 {
			t.Errorf("Expected 2 field entries, got %v", apiErr.Details["fields"])
		}
	})

	t.Run("empty", func(t *testing.T) {
		ve := &RequestValidationError{}
		if got := ve.ToAPIError().Message; got != "Validation failed" {
			t.Errorf("Expected generic message, got %q", got)
		}
		if got := ve.Error(); got != "validation failed" {
			t.Errorf("Expected generic error, got %q", got)
		}
	})
}

func TestMessages_MinMax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*reportStruct)
		want   string
	}{
		{"string max", func(r *reportStruct) { r.Name = strings.Repeat("x", 21) }, "name must be at most 20 characters"},
		{"int max", func(r *reportStruct) { r.Limit = 20000 }, "limit must be at most 10000"},
		{"int min", func(r *reportStruct) { r.Limit = -5 }, "limit must be at least 0"},
	}

	for _, tt := range tests {
		input := validReport()
		tt.mutate(&input)
		err := ValidateStruct(&input)
		if err == nil {
			t.Fatalf("%s: Expected validation error", tt.name)
		}
		if got := err.Errors()[0].Error(); got != tt.want {
			t.Errorf("%s: Expected %q, got %q", tt.name, tt.want, got)
		}
	}
}
