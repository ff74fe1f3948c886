// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package chart

import (
	"reflect"
	"testing"

	"github.com/tomtom215/reportkit/internal/models"
)

func sixSeries() *models.AggregationResult {
	r := &models.AggregationResult{}
	for i, id := range []string{"a", "b", "c", "d", "e", "f"} {
		r.Series = append(r.Series, models.Serie{ID: id, Index: i})
	}
	return r
}

func ids(series []models.Serie) []string {
	out := make([]string, len(series))
	for i, s := range series {
		out[i] = s.ID
	}
	return out
}

func TestSelect_InitialCap(t *testing.T) {
	t.Parallel()

	result := sixSeries()
	if got := ids(Select(result, nil, DefaultVisibleCap)); !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("Expected first four series, got %v", got)
	}
	if got := Select(result, nil, 0); len(got) != 6 {
		t.Errorf("Expected all series in edit mode, got %d", len(got))
	}
}

func TestSelect_PreservesAggregationOrder(t *testing.T) {
	t.Parallel()

	result := sixSeries()
	visible := NewVisibleSet()
	for _, id := range []string{"f", "b", "d"} {
		visible.Toggle(id)
	}

	got := Select(result, visible, DefaultVisibleCap)
	if !reflect.DeepEqual(ids(got), []string{"b", "d", "f"}) {
		t.Errorf("Expected aggregation order, got %v", ids(got))
	}
	if got[2].Index != 5 {
		t.Errorf("Expected f to keep index 5, got %d", got[2].Index)
	}
}

func TestSelect_SetIgnoresCap(t *testing.T) {
	t.Parallel()

	visible := NewVisibleSet("a", "b", "c", "d", "e")
	if got := Select(sixSeries(), visible, 2); len(got) != 5 {
		t.Errorf("Expected every member regardless of cap, got %d", len(got))
	}
}

func TestSelect_EmptySet(t *testing.T) {
	t.Parallel()

	visible := NewVisibleSet("a")
	if visible.Toggle("a") {
		t.Error("Expected toggle off to report hidden")
	}
	got := Select(sixSeries(), visible, DefaultVisibleCap)
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil selection, got %v", got)
	}
	if got := Select(nil, nil, 0); got == nil || len(got) != 0 {
		t.Errorf("Expected empty selection for a nil result, got %v", got)
	}
}

func TestSelect_DoesNotMutate(t *testing.T) {
	t.Parallel()

	result := sixSeries()
	before := ids(result.Series)
	out := Select(result, NewVisibleSet("c"), 0)
	out[0].ID = "changed"
	if !reflect.DeepEqual(ids(result.Series), before) {
		t.Error("Expected result to be unchanged")
	}
}

func TestVisibleSet(t *testing.T) {
	t.Parallel()

	s := NewVisibleSetFromSeries(sixSeries(), DefaultVisibleCap)
	if !reflect.DeepEqual(s.IDs(), []string{"a", "b", "c", "d"}) {
		t.Errorf("Expected seeded ids, got %v", s.IDs())
	}
	if !s.Toggle("f") || !s.Has("f") || s.Len() != 5 {
		t.Error("Expected f to become visible")
	}

	var none *VisibleSet
	if none.Has("a") || none.Len() != 0 || none.IDs() != nil {
		t.Error("Expected nil set to be empty")
	}
}
