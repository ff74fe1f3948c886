// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package chart

import (
	"sort"

	"github.com/tomtom215/reportkit/internal/models"
)

// DefaultVisibleCap is the number of series shown initially outside edit mode.
const DefaultVisibleCap = 4

// VisibleSet is the user-controlled set of visible serie ids. A nil
// *VisibleSet means the user has not toggled anything yet.
type VisibleSet struct {
	ids map[string]struct{}
}

// NewVisibleSet returns a set containing ids.
func NewVisibleSet(ids ...string) *VisibleSet {
	s := &VisibleSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// NewVisibleSetFromSeries seeds a set with the first limit series of result,
// the same series Select shows before the user toggles anything.
func NewVisibleSetFromSeries(result *models.AggregationResult, limit int) *VisibleSet {
	initial := Select(result, nil, limit)
	ids := make([]string, len(initial))
	for i, s := range initial {
		ids[i] = s.ID
	}
	return NewVisibleSet(ids...)
}

// Has reports whether id is visible.
func (s *VisibleSet) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

// Toggle flips the visibility of id and returns the resulting state.
// Removing the last visible id is allowed.
func (s *VisibleSet) Toggle(id string) bool {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Len returns the number of visible ids.
func (s *VisibleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns the visible ids in sorted order.
func (s *VisibleSet) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Select returns the series to render, in the order the aggregation
// returned them. With a nil visible set the first limit series are returned
// (limit <= 0 means all). With a non-nil set exactly its members are
// returned, regardless of limit. The result is never mutated; returned
// series keep their Index.
func Select(result *models.AggregationResult, visible *VisibleSet, limit int) []models.Serie {
	if result == nil {
		return []models.Serie{}
	}
	out := make([]models.Serie, 0, len(result.Series))
	for _, s := range result.Series {
		if visible == nil {
			if limit > 0 && len(out) >= limit {
				break
			}
			out = append(out, s)
			continue
		}
		if visible.Has(s.ID) {
			out = append(out, s)
		}
	}
	return out
}
