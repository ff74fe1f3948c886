// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package query

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/casbin/govaluate"

	"github.com/tomtom215/reportkit/internal/chart"
	"github.com/tomtom215/reportkit/internal/models"
)

// CompileFormula parses a formula over series letters such as "B/A*100".
func CompileFormula(formula string) (*govaluate.EvaluableExpression, error) {
	expr, err := govaluate.NewEvaluableExpression(strings.ToUpper(strings.TrimSpace(formula)))
	if err != nil {
		return nil, fmt.Errorf("%w: formula %q: %v", ErrInvalidPayload, formula, err)
	}
	for _, v := range expr.Vars() {
		if len(v) != 1 || v[0] < 'A' || v[0] > 'Z' {
			return nil, fmt.Errorf("%w: formula %q references unknown series %q", ErrInvalidPayload, formula, v)
		}
	}
	return expr, nil
}

// evaluateFormula computes a formula item point by point. Letters refer to
// series items by position; each breakdown combination is evaluated on its
// own. Missing points and letters without data read as 0, and non-finite
// results (division by zero) become 0.
func evaluateFormula(index int, f models.FormulaItem, events []models.RawSerie, itemCount int, buckets []time.Time) ([]models.RawSerie, error) {
	expr, err := CompileFormula(f.Formula)
	if err != nil {
		return nil, err
	}

	type combo struct {
		breakdowns []string
		byLetter   map[string]map[int64]float64
	}
	combos := make(map[string]*combo)
	for _, s := range events {
		if s.DefinitionIndex < 0 || s.DefinitionIndex >= len(chart.AlphabetIDs) {
			continue
		}
		k := strings.Join(s.Breakdowns, "\x00")
		c, ok := combos[k]
		if !ok {
			c = &combo{breakdowns: s.Breakdowns, byLetter: make(map[string]map[int64]float64)}
			combos[k] = c
		}
		letter := chart.AlphabetIDs[s.DefinitionIndex]
		points := make(map[int64]float64, len(s.Data))
		for _, p := range s.Data {
			points[p.Date.UnixNano()] = p.Count
		}
		c.byLetter[letter] = points
	}

	keys := make([]string, 0, len(combos))
	for k := range combos {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	letters := itemCount
	if letters > len(chart.AlphabetIDs) {
		letters = len(chart.AlphabetIDs)
	}

	out := make([]models.RawSerie, 0, len(keys))
	for _, k := range keys {
		c := combos[k]
		data := make([]models.DataPoint, len(buckets))
		params := make(map[string]interface{}, len(chart.AlphabetIDs))
		for j, b := range buckets {
			for _, l := range chart.AlphabetIDs {
				params[l] = 0.0
			}
			for l := 0; l < letters; l++ {
				letter := chart.AlphabetIDs[l]
				params[letter] = c.byLetter[letter][b.UnixNano()]
			}
			v, err := expr.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("%w: formula %q: %v", ErrInvalidPayload, f.Formula, err)
			}
			data[j] = models.DataPoint{Date: b, Count: finite(v)}
		}
		bd := c.breakdowns
		if bd == nil {
			bd = []string{}
		}
		out = append(out, models.RawSerie{
			DefinitionIndex: index,
			Event:           models.SerieEvent{ID: f.ID, Name: f.Label()},
			Breakdowns:      bd,
			Data:            data,
		})
	}
	return out, nil
}

func finite(v interface{}) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case bool:
		if n {
			f = 1
		}
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return chart.Round(f, 2)
}
