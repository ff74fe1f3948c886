// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package report

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reportkit/internal/models"
)

// ErrUnknownAction is returned by DecodeAction for unrecognized action types.
// Apply itself never fails on unknown actions.
var ErrUnknownAction = errors.New("unknown report action")

// Envelope is the wire form of an action: {"type": "...", "payload": ...}.
type Envelope struct {
	Type    string          `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodeAction converts a wire envelope into a typed Action.
func DecodeAction(env Envelope) (Action, error) {
	p := bytes.TrimSpace(env.Payload)
	switch env.Type {
	case "reset":
		return Reset{}, nil
	case "ready":
		return Ready{}, nil
	case "resetDirty":
		return ResetDirty{}, nil
	case "setReport":
		var def models.ReportDefinition
		if err := decodeInto(p, &def, env.Type); err != nil {
			return nil, err
		}
		return SetReport{Report: def}, nil
	case "setName":
		var v string
		err := decodeInto(p, &v, env.Type)
		return SetName{Name: v}, err
	case "addSerie", "duplicateEvent", "changeEvent":
		item, err := models.UnmarshalSeriesItem(p)
		if err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		switch env.Type {
		case "addSerie":
			return AddSerie{Item: item}, nil
		case "duplicateEvent":
			return DuplicateEvent{Item: item}, nil
		}
		return ChangeEvent{Item: item}, nil
	case "removeEvent":
		var v struct {
			ID string `json:"id"`
		}
		err := decodeInto(p, &v, env.Type)
		return RemoveEvent{ID: v.ID}, err
	case "reorderEvents":
		var v struct {
			FromIndex int `json:"from_index"`
			ToIndex   int `json:"to_index"`
		}
		err := decodeInto(p, &v, env.Type)
		return ReorderEvents{From: v.FromIndex, To: v.ToIndex}, err
	case "addBreakdown":
		var v models.Breakdown
		err := decodeInto(p, &v, env.Type)
		return AddBreakdown{Breakdown: v}, err
	case "removeBreakdown":
		var v struct {
			ID string `json:"id"`
		}
		err := decodeInto(p, &v, env.Type)
		return RemoveBreakdown{ID: v.ID}, err
	case "changeBreakdown":
		var v models.Breakdown
		err := decodeInto(p, &v, env.Type)
		return ChangeBreakdown{Breakdown: v}, err
	case "changeChartType":
		var v models.ChartType
		err := decodeInto(p, &v, env.Type)
		return ChangeChartType{Type: v}, err
	case "changeInterval":
		var v models.Interval
		err := decodeInto(p, &v, env.Type)
		return ChangeInterval{Interval: v}, err
	case "changeDateRanges":
		var v models.DateRange
		err := decodeInto(p, &v, env.Type)
		return ChangeDateRanges{Range: v}, err
	case "changeStartDate":
		var v *time.Time
		err := decodeInto(p, &v, env.Type)
		return ChangeStartDate{Date: v}, err
	case "changeEndDate":
		var v *time.Time
		err := decodeInto(p, &v, env.Type)
		return ChangeEndDate{Date: v}, err
	case "changePrevious":
		var v bool
		err := decodeInto(p, &v, env.Type)
		return ChangePrevious{Previous: v}, err
	case "changeLineType":
		var v models.LineType
		err := decodeInto(p, &v, env.Type)
		return ChangeLineType{LineType: v}, err
	case "changeFormula":
		var v string
		err := decodeInto(p, &v, env.Type)
		return ChangeFormula{Formula: v}, err
	case "changeUnit":
		var v string
		err := decodeInto(p, &v, env.Type)
		return ChangeUnit{Unit: v}, err
	case "changeMetric":
		var v models.Metric
		err := decodeInto(p, &v, env.Type)
		return ChangeMetric{Metric: v}, err
	case "changeLimit":
		var v int
		err := decodeInto(p, &v, env.Type)
		return ChangeLimit{Limit: v}, err
	case "changeOptions":
		opts, err := models.UnmarshalOptions(p)
		if err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return ChangeOptions{Options: opts}, nil
	case "changeCriteria":
		var v models.Criteria
		err := decodeInto(p, &v, env.Type)
		return ChangeCriteria{Criteria: v}, err
	case "changeFunnelGroup":
		var v *string
		err := decodeInto(p, &v, env.Type)
		return ChangeFunnelGroup{Group: v}, err
	case "changeFunnelWindow":
		var v *float64
		err := decodeInto(p, &v, env.Type)
		return ChangeFunnelWindow{Window: v}, err
	case "changeSankeyMode":
		var v models.SankeyMode
		err := decodeInto(p, &v, env.Type)
		return ChangeSankeyMode{Mode: v}, err
	case "changeSankeySteps":
		var v int
		err := decodeInto(p, &v, env.Type)
		return ChangeSankeySteps{Steps: v}, err
	case "changeSankeyExclude":
		var v []string
		err := decodeInto(p, &v, env.Type)
		return ChangeSankeyExclude{Exclude: v}, err
	case "changeSankeyInclude":
		var v []string
		err := decodeInto(p, &v, env.Type)
		return ChangeSankeyInclude{Include: v}, err
	case "changeStacked":
		var v bool
		err := decodeInto(p, &v, env.Type)
		return ChangeStacked{Stacked: v}, err
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
}

func decodeInto(payload []byte, v any, actionType string) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", actionType, err)
	}
	return nil
}
