// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package query

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/reportkit/internal/chart"
	"github.com/tomtom215/reportkit/internal/metrics"
	"github.com/tomtom215/reportkit/internal/models"
)

// groupColumn maps a funnel group option to its column.
func groupColumn(group string) string {
	if group == "profile_id" {
		return "profile_id"
	}
	return "session_id"
}

func funnelOptions(p Payload) models.FunnelOptions {
	if o, ok := p.Options.(models.FunnelOptions); ok {
		return o
	}
	return models.FunnelOptions{}
}

// Funnel computes how far each group gets through the event items in order,
// where every step must happen within the funnel window of the first.
func (e *DuckDBEngine) Funnel(ctx context.Context, p Payload) (result *models.FunnelComparison, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery(FamilyFunnel, time.Since(start), err) }()

	if err := e.check(p); err != nil {
		return nil, err
	}
	events := chart.FunnelEvents(p.Series)
	result = &models.FunnelComparison{Current: []models.FunnelResult{}}
	if len(events) == 0 {
		return result, nil
	}

	opts := funnelOptions(p)
	result.Current, err = e.funnel(ctx, events, p.Breakdowns, opts, p.Start, p.End)
	if err != nil {
		return nil, err
	}
	if p.Previous {
		ps, pe := p.PreviousBounds()
		result.Previous, err = e.funnel(ctx, events, p.Breakdowns, opts, ps, pe)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

type funnelRow struct {
	group string
	at    time.Time
	steps []bool
	bd    []string
}

func (e *DuckDBEngine) funnel(ctx context.Context, events []models.EventItem, breakdowns []models.Breakdown,
	opts models.FunnelOptions, start, end time.Time) ([]models.FunnelResult, error) {
	stepCols := make([]string, len(events))
	var stepArgs []interface{}
	names := make([]string, len(events))
	for i, ev := range events {
		cond, args, err := NewWhereBuilder().AddClause("name = ?", ev.Name).AddFilters(ev.Filters).Build()
		if err != nil {
			return nil, err
		}
		stepCols[i] = fmt.Sprintf("(%s) AS s%d", cond, i)
		stepArgs = append(stepArgs, args...)
		names[i] = ev.Name
	}
	bdCols, bdArgs, err := breakdownSelect(breakdowns)
	if err != nil {
		return nil, err
	}
	where, whereArgs, err := NewWhereBuilder().AddTimeRange(start, end).AddIn("name", nil, names).Build()
	if err != nil {
		return nil, err
	}

	cols := append([]string{groupColumn(opts.Group()) + " AS g", "created_at"}, stepCols...)
	cols = append(cols, bdCols...)
	q := fmt.Sprintf(`SELECT %s FROM events WHERE %s ORDER BY g, created_at`, strings.Join(cols, ", "), where)
	rows, err := queryAndScan(ctx, e.db, q, concatArgs(stepArgs, bdArgs, whereArgs), func(r *sql.Rows) (funnelRow, error) {
		row := funnelRow{steps: make([]bool, len(events))}
		dest := []interface{}{&row.group, &row.at}
		for i := range row.steps {
			dest = append(dest, &row.steps[i])
		}
		bd, err := scanBreakdowns(r, len(bdCols), dest...)
		row.bd = bd
		row.at = utc(row.at)
		return row, err
	})
	if err != nil {
		return nil, err
	}

	window := time.Duration(opts.WindowHours() * float64(time.Hour))
	levels := funnelLevels(rows, len(events), window)

	if len(breakdowns) == 0 {
		var all []chart.FunnelLevel
		if g, ok := levels[""]; ok {
			all = g.levels
		}
		return []models.FunnelResult{chart.FunnelSteps(chart.FillFunnel(all, len(events)), events, nil)}, nil
	}

	keys := make([]string, 0, len(levels))
	for k := range levels {
		keys = append(keys, k)
	}
	out := make([]models.FunnelResult, 0, len(keys))
	for _, k := range keys {
		g := levels[k]
		out = append(out, chart.FunnelSteps(chart.FillFunnel(g.levels, len(events)), events, g.breakdowns))
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].TotalSessions != out[b].TotalSessions {
			return out[a].TotalSessions > out[b].TotalSessions
		}
		return strings.Join(out[a].Breakdowns, "\x00") < strings.Join(out[b].Breakdowns, "\x00")
	})
	return out, nil
}

type levelGroup struct {
	breakdowns []string
	levels     []chart.FunnelLevel
}

// funnelLevels walks rows ordered by group and time and returns, per
// breakdown combination, how many groups reached each level. A group's
// breakdown values are read from its first step-one event.
func funnelLevels(rows []funnelRow, steps int, window time.Duration) map[string]*levelGroup {
	out := make(map[string]*levelGroup)
	add := func(bd []string, level int) {
		if level == 0 {
			return
		}
		k := strings.Join(bd, "\x00")
		g, ok := out[k]
		if !ok {
			g = &levelGroup{breakdowns: bd}
			out[k] = g
		}
		for i := range g.levels {
			if g.levels[i].Level == level {
				g.levels[i].Count++
				return
			}
		}
		g.levels = append(g.levels, chart.FunnelLevel{Level: level, Count: 1})
	}

	for i := 0; i < len(rows); {
		j := i
		starts := make([]time.Time, steps)
		reached := make([]bool, steps)
		var bd []string
		for ; j < len(rows) && rows[j].group == rows[i].group; j++ {
			r := rows[j]
			for k := steps - 1; k >= 0; k-- {
				if !r.steps[k] {
					continue
				}
				if k == 0 {
					starts[0], reached[0] = r.at, true
					if bd == nil {
						bd = r.bd
					}
				} else if reached[k-1] && r.at.Sub(starts[k-1]) <= window {
					starts[k], reached[k] = starts[k-1], true
				}
			}
		}
		level := 0
		for k := steps - 1; k >= 0; k-- {
			if reached[k] {
				level = k + 1
				break
			}
		}
		add(bd, level)
		i = j
	}
	return out
}
