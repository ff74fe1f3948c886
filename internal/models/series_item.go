// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// SeriesItemType tags the variants of SeriesItem.
type SeriesItemType string

const (
	SeriesItemEvent   SeriesItemType = "event"
	SeriesItemFormula SeriesItemType = "formula"
)

// SeriesItem is one entry of a report's series list: either an EventItem or a FormulaItem.
type SeriesItem interface {
	ItemID() string
	ItemType() SeriesItemType
	// Label is the name shown in legends.
	Label() string
}

// EventItem counts occurrences of a named event.
type EventItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name,omitempty"`
	Segment     Segment  `json:"segment"`
	Filters     []Filter `json:"filters"`
	Property    string   `json:"property,omitempty"`
}

func (e EventItem) ItemID() string           { return e.ID }
func (e EventItem) ItemType() SeriesItemType { return SeriesItemEvent }

func (e EventItem) Label() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.Name
}

// MarshalJSON adds the "type" tag.
func (e EventItem) MarshalJSON() ([]byte, error) {
	type alias EventItem
	return json.Marshal(struct {
		Type SeriesItemType `json:"type"`
		alias
	}{SeriesItemEvent, alias(e)})
}

// FormulaItem combines other series with an arithmetic expression over their letters (A, B, ...).
type FormulaItem struct {
	ID          string `json:"id"`
	Formula     string `json:"formula"`
	DisplayName string `json:"display_name,omitempty"`
}

func (f FormulaItem) ItemID() string           { return f.ID }
func (f FormulaItem) ItemType() SeriesItemType { return SeriesItemFormula }

func (f FormulaItem) Label() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Formula
}

// MarshalJSON adds the "type" tag.
func (f FormulaItem) MarshalJSON() ([]byte, error) {
	type alias FormulaItem
	return json.Marshal(struct {
		Type SeriesItemType `json:"type"`
		alias
	}{SeriesItemFormula, alias(f)})
}

// SeriesList is an ordered list of series items with type-tagged JSON.
type SeriesList []SeriesItem

// UnmarshalJSON decodes each element by its "type" tag. Untagged elements are events.
func (l *SeriesList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*l = nil
		return nil
	}
	out := make(SeriesList, 0, len(raw))
	for i, r := range raw {
		item, err := UnmarshalSeriesItem(r)
		if err != nil {
			return fmt.Errorf("series[%d]: %w", i, err)
		}
		out = append(out, item)
	}
	*l = out
	return nil
}

// UnmarshalSeriesItem decodes a single item by its "type" tag. Untagged
// input decodes as an EventItem.
func UnmarshalSeriesItem(data []byte) (SeriesItem, error) {
	var head struct {
		Type SeriesItemType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case SeriesItemEvent, "":
		var e EventItem
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case SeriesItemFormula:
		var f FormulaItem
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return f, nil
	}
	return nil, fmt.Errorf("unknown item type %q", head.Type)
}

// Clone deep-copies the list including event filters.
func (l SeriesList) Clone() SeriesList {
	if l == nil {
		return nil
	}
	out := make(SeriesList, len(l))
	for i, item := range l {
		out[i] = CloneSeriesItem(item)
	}
	return out
}

// IndexOf returns the position of the item with the given id, or -1.
func (l SeriesList) IndexOf(id string) int {
	for i, item := range l {
		if item.ItemID() == id {
			return i
		}
	}
	return -1
}

// CloneSeriesItem deep-copies a single item.
func CloneSeriesItem(item SeriesItem) SeriesItem {
	switch v := item.(type) {
	case EventItem:
		v.Filters = cloneFilters(v.Filters)
		return v
	case *EventItem:
		c := *v
		c.Filters = cloneFilters(v.Filters)
		return c
	case *FormulaItem:
		return *v
	}
	return item
}

func cloneFilters(in []Filter) []Filter {
	if in == nil {
		return nil
	}
	out := make([]Filter, len(in))
	for i, f := range in {
		f.Value = cloneStrings(f.Value)
		out[i] = f
	}
	return out
}

// cloneStrings copies in, preserving the difference between nil and empty.
func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
