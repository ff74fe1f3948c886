// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package report

import (
	"errors"
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reportkit/internal/models"
)

func TestDecodeAction(t *testing.T) {
	t.Parallel()

	window := 6.0
	tests := []struct {
		name    string
		env     Envelope
		want    Action
		wantErr bool
	}{
		{name: "reset", env: Envelope{Type: "reset"}, want: Reset{}},
		{name: "chart type", env: Envelope{Type: "changeChartType", Payload: json.RawMessage(`"sankey"`)},
			want: ChangeChartType{Type: models.ChartSankey}},
		{name: "reorder", env: Envelope{Type: "reorderEvents", Payload: json.RawMessage(`{"from_index":2,"to_index":0}`)},
			want: ReorderEvents{From: 2, To: 0}},
		{name: "funnel window", env: Envelope{Type: "changeFunnelWindow", Payload: json.RawMessage(`6`)},
			want: ChangeFunnelWindow{Window: &window}},
		{name: "sankey exclude", env: Envelope{Type: "changeSankeyExclude", Payload: json.RawMessage(`["a","b"]`)},
			want: ChangeSankeyExclude{Exclude: []string{"a", "b"}}},
		{name: "formula item", env: Envelope{Type: "addSerie", Payload: json.RawMessage(`{"type":"formula","formula":"A+B"}`)},
			want: AddSerie{Item: models.FormulaItem{Formula: "A+B"}}},
		{name: "options", env: Envelope{Type: "changeOptions", Payload: json.RawMessage(`{"type":"histogram","stacked":true}`)},
			want: ChangeOptions{Options: models.HistogramOptions{Stacked: true}}},
		{name: "null options", env: Envelope{Type: "changeOptions", Payload: json.RawMessage(`null`)},
			want: ChangeOptions{}},
		{name: "bad payload", env: Envelope{Type: "changeLimit", Payload: json.RawMessage(`"ten"`)}, wantErr: true},
		{name: "bad item", env: Envelope{Type: "changeEvent", Payload: json.RawMessage(`{"type":"widget"}`)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAction(tt.env)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %#v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestDecodeAction_Unknown(t *testing.T) {
	t.Parallel()

	_, err := DecodeAction(Envelope{Type: "explode"})
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Expected ErrUnknownAction, got %v", err)
	}
}
