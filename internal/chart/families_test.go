// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package chart

import (
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/reportkit/internal/models"
)

func TestFillFunnel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		levels []FunnelLevel
		steps  int
		want   []float64
	}{
		{"accumulates upward", []FunnelLevel{{3, 2}, {1, 5}, {2, 3}}, 3, []float64{10, 5, 2}},
		{"missing level", []FunnelLevel{{3, 4}}, 3, []float64{4, 4, 4}},
		{"out of range ignored", []FunnelLevel{{0, 9}, {4, 9}, {1, 1}}, 3, []float64{1, 0, 0}},
		{"no steps", nil, 0, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FillFunnel(tt.levels, tt.steps); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFunnelSteps(t *testing.T) {
	t.Parallel()

	events := []models.EventItem{
		{ID: "a", Name: "visit"},
		{ID: "b", Name: "signup", DisplayName: "Sign up"},
		{ID: "c", Name: "purchase"},
	}

	got := FunnelSteps([]float64{10, 5, 2}, events, nil)
	if got.TotalSessions != 10 {
		t.Errorf("Expected 10 sessions, got %v", got.TotalSessions)
	}
	want := []struct{ percent, dropoff, dropoffPct, prev float64 }{
		{100, 0, 0, 10},
		{50, 5, 50, 10},
		{20, 3, 60, 5},
	}
	for i, w := range want {
		s := got.Steps[i]
		if s.Percent != w.percent || s.DropoffCount != w.dropoff || math.Abs(s.DropoffPercent-w.dropoffPct) > 1e-9 || s.PreviousCount != w.prev {
			t.Errorf("step %d: Expected %+v, got %+v", i, w, s)
		}
	}
	if got.Steps[1].DisplayName != "Sign up" {
		t.Errorf("Expected display name, got %q", got.Steps[1].DisplayName)
	}
	if got.MostDropoffsIndex != 1 {
		t.Errorf("Expected most dropoffs at 1, got %d", got.MostDropoffsIndex)
	}
	if got.LastStepPercent != 20 {
		t.Errorf("Expected last step 20%%, got %v", got.LastStepPercent)
	}
}

func TestFunnelSteps_ZeroGuards(t *testing.T) {
	t.Parallel()

	got := FunnelSteps([]float64{0, 0}, []models.EventItem{{Name: "a"}, {Name: "b"}}, []string{"SE"})
	for i, s := range got.Steps {
		if s.Percent != 0 || s.DropoffPercent != 0 {
			t.Errorf("step %d: Expected zero percentages, got %+v", i, s)
		}
	}
	if got.Breakdowns[0] != "SE" {
		t.Errorf("Expected breakdowns to be carried, got %v", got.Breakdowns)
	}

	empty := FunnelSteps(nil, nil, nil)
	if empty.MostDropoffsIndex != -1 || len(empty.Steps) != 0 {
		t.Errorf("Expected empty funnel, got %+v", empty)
	}
}

func TestFunnelEvents_SkipsFormulas(t *testing.T) {
	t.Parallel()

	items := models.SeriesList{
		models.EventItem{ID: "a", Name: "visit"},
		models.FormulaItem{ID: "f", Formula: "A"},
	}
	if got := FunnelEvents(items); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Expected only event items, got %+v", got)
	}
}

func TestConversionSerieID(t *testing.T) {
	t.Parallel()

	if got := ConversionSerieID(nil); got != "conversion" {
		t.Errorf("Expected conversion, got %q", got)
	}
	if got := ConversionSerieID([]string{"SE", ""}); got != "SE|(not set)" {
		t.Errorf("Expected not-set placeholder, got %q", got)
	}
}

func TestGroupConversion(t *testing.T) {
	t.Parallel()

	rows := []ConversionRow{
		{Date: day(2024, 1, 1), Total: 10, Conversions: 1, Rate: 10, Breakdowns: []string{"US"}},
		{Date: day(2024, 1, 1), Total: 10, Conversions: 2, Rate: 20, Breakdowns: []string{""}},
		{Date: day(2024, 1, 2), Total: 10, Conversions: 3, Rate: 30, Breakdowns: []string{"US"}},
	}

	got := GroupConversion(rows, 1)
	if len(got) != 2 {
		t.Fatalf("Expected 2 series, got %d", len(got))
	}
	if got[0].ID != "US" || len(got[0].Data) != 2 {
		t.Errorf("Expected US first with 2 points, got %+v", got[0])
	}
	if got[1].Breakdowns[0] != NotSetValue {
		t.Errorf("Expected not-set breakdown, got %v", got[1].Breakdowns)
	}

	single := GroupConversion(rows, 0)
	if len(single) != 1 || single[0].ID != "conversion" || len(single[0].Data) != 3 {
		t.Errorf("Expected one conversion serie, got %+v", single)
	}
}

func TestConversionRate(t *testing.T) {
	t.Parallel()

	if got := ConversionRate(1, 3); got != 33.33 {
		t.Errorf("Expected 33.33, got %v", got)
	}
	if got := ConversionRate(5, 0); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
}

func sankeyFixture(withMerge bool) []models.SankeyTransition {
	out := []models.SankeyTransition{
		{Source: "home", Target: "pricing", Step: 1, Value: 60},
		{Source: "home", Target: "blog", Step: 1, Value: 30},
		{Source: "home", Target: "docs", Step: 1, Value: 5},
		{Source: "home", Target: "about", Step: 1, Value: 4},
		{Source: "pricing", Target: "signup", Step: 2, Value: 40},
		{Source: "blog", Target: "signup", Step: 2, Value: 10},
	}
	if withMerge {
		out = append(out, models.SankeyTransition{Source: "blog", Target: "docs", Step: 2, Value: 10})
	}
	return out
}

func nodeIDs(nodes []models.SankeyNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestBuildSankey(t *testing.T) {
	t.Parallel()

	entries := []models.SankeyEntry{{Event: "home", Count: 100}}
	got := BuildSankey(sankeyFixture(false), entries, 100, 3)

	want := []string{"home::step1", "pricing::step2", "blog::step2", "docs::step2", "signup::step3"}
	if !reflect.DeepEqual(nodeIDs(got.Nodes), want) {
		t.Errorf("Expected nodes %v, got %v", want, nodeIDs(got.Nodes))
	}
	if len(got.Links) != 5 {
		t.Fatalf("Expected 5 links, got %d", len(got.Links))
	}
	for _, n := range got.Nodes {
		if n.ID == "signup::step3" && n.Value != 50 {
			t.Errorf("Expected signup value 50, got %v", n.Value)
		}
		if n.Color != ChartColors[0] {
			t.Errorf("Expected %s to inherit the entry color, got %s", n.ID, n.Color)
		}
	}
	for _, l := range got.Links {
		if l.Source == "pricing::step2" {
			if l.Pct != 40 || math.Abs(l.ShareOfSource-200.0/3) > 1e-9 {
				t.Errorf("Unexpected shares %+v", l)
			}
		}
	}
}

func TestBuildSankey_MergesTerminalNodes(t *testing.T) {
	t.Parallel()

	entries := []models.SankeyEntry{{Event: "home", Count: 100}}
	got := BuildSankey(sankeyFixture(true), entries, 100, 3)

	want := []string{"home::step1", "pricing::step2", "blog::step2", "signup::step3", "docs::final"}
	if !reflect.DeepEqual(nodeIDs(got.Nodes), want) {
		t.Errorf("Expected nodes %v, got %v", want, nodeIDs(got.Nodes))
	}
	last := got.Nodes[len(got.Nodes)-1]
	if last.Value != 15 || last.Step != 3 {
		t.Errorf("Expected merged docs node with 15 at step 3, got %+v", last)
	}
	if len(got.Links) != 6 {
		t.Errorf("Expected 6 links, got %d", len(got.Links))
	}
}

func TestBuildSankey_ThresholdAndEmpty(t *testing.T) {
	t.Parallel()

	tiny := []models.SankeyTransition{{Source: "home", Target: "a", Step: 1, Value: 2}}
	got := BuildSankey(tiny, []models.SankeyEntry{{Event: "home", Count: 1000}}, 1000, 5)
	if len(got.Nodes) != 0 || len(got.Links) != 0 {
		t.Errorf("Expected links below 0.25%% to be dropped, got %+v", got)
	}

	empty := BuildSankey(nil, nil, 0, 5)
	if empty.Nodes == nil || empty.Links == nil {
		t.Error("Expected non-nil empty slices")
	}
}

func TestSankeyShares_DerivesTotal(t *testing.T) {
	t.Parallel()

	result := models.SankeyResult{
		Nodes: []models.SankeyNode{
			{ID: "a", Step: 1, Value: 40},
			{ID: "b", Step: 1, Value: 60},
			{ID: "c", Step: 2, Value: 0},
		},
		Links: []models.SankeyLink{
			{Source: "a", Target: "c", Value: 20},
			{Source: "c", Target: "b", Value: 5},
		},
	}
	got := SankeyShares(result)
	if got.TotalSessions != 100 {
		t.Errorf("Expected total from step-1 nodes, got %v", got.TotalSessions)
	}
	if got.Links[0].Pct != 20 || got.Links[0].ShareOfSource != 50 {
		t.Errorf("Unexpected shares %+v", got.Links[0])
	}
	if got.Links[1].ShareOfSource != 0 {
		t.Errorf("Expected guarded share for a zero source, got %v", got.Links[1].ShareOfSource)
	}
}

func TestRetentionRows(t *testing.T) {
	t.Parallel()

	cohorts := []models.RetentionCohort{
		{CohortInterval: "2024-01-01", Sum: 100, Values: []float64{100, 50, 0}},
		{CohortInterval: "2024-01-08", Sum: 0, Values: []float64{0, 0, 0}},
	}

	got := RetentionRows(cohorts)
	if len(got) != 3 {
		t.Fatalf("Expected average row plus 2 cohorts, got %d", len(got))
	}
	avg := got[0]
	if avg.CohortInterval != WeightedAverageCohort || avg.Sum != 50 {
		t.Errorf("Unexpected average row %+v", avg)
	}
	if !reflect.DeepEqual(avg.Percentages, []float64{1, 0.5, 0}) {
		t.Errorf("Expected weighted percentages, got %v", avg.Percentages)
	}
	if !reflect.DeepEqual(got[1].Percentages, []float64{1, 0.5, 0}) {
		t.Errorf("Unexpected cohort percentages %v", got[1].Percentages)
	}
	if !reflect.DeepEqual(got[2].Percentages, []float64{0, 0, 0}) {
		t.Errorf("Expected zero cohort to stay at 0, got %v", got[2].Percentages)
	}
	if len(RetentionRows(nil)) != 0 {
		t.Error("Expected no rows for no cohorts")
	}
}
