// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package query

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/tomtom215/reportkit/internal/chart"
	"github.com/tomtom215/reportkit/internal/metrics"
	"github.com/tomtom215/reportkit/internal/models"
)

func sankeyOptions(p Payload) models.SankeyOptions {
	o, _ := p.Options.(models.SankeyOptions)
	if o.Mode == "" {
		o.Mode = models.SankeyAfter
	}
	if o.Steps < models.SankeyMinSteps || o.Steps > models.SankeyMaxSteps {
		o.Steps = models.SankeyDefaultSteps
	}
	return o
}

// Sankey computes user journeys around the first event item: the steps
// after it, the steps leading to it, or the path between it and the second
// item. Consecutive repeats of an event collapse into one step.
func (e *DuckDBEngine) Sankey(ctx context.Context, p Payload) (result *models.SankeyResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery(FamilySankey, time.Since(start), err) }()

	if err := e.check(p); err != nil {
		return nil, err
	}
	opts := sankeyOptions(p)
	events := chart.FunnelEvents(p.Series)
	var from, to string
	if len(events) > 0 {
		from = events[0].Name
	}
	if len(events) > 1 {
		to = events[1].Name
	}

	where, args, err := NewWhereBuilder().
		AddTimeRange(p.Start, p.End).
		AddNotIn("name", nil, opts.Exclude).
		AddIn("name", nil, opts.Include).
		Build()
	if err != nil {
		return nil, err
	}

	type step struct {
		session string
		name    string
	}
	rows, err := queryAndScan(ctx, e.db,
		`SELECT session_id, name FROM events WHERE `+where+` ORDER BY session_id, created_at`,
		args, func(r *sql.Rows) (step, error) {
			var s step
			err := r.Scan(&s.session, &s.name)
			return s, err
		})
	if err != nil {
		return nil, err
	}

	var paths [][]string
	for i := 0; i < len(rows); {
		j := i
		var seq []string
		for ; j < len(rows) && rows[j].session == rows[i].session; j++ {
			if n := len(seq); n == 0 || seq[n-1] != rows[j].name {
				seq = append(seq, rows[j].name)
			}
		}
		if path := JourneyPath(seq, opts.Mode, from, to, opts.Steps); len(path) > 0 {
			paths = append(paths, path)
		}
		i = j
	}

	transitions, entries := journeyFlows(paths)
	built := chart.BuildSankey(transitions, entries, float64(len(paths)), opts.Steps)
	return &built, nil
}

// JourneyPath cuts the part of a session's event sequence a sankey shows.
// An empty from anchors at the first event. It returns nil when the
// session never reaches the anchor events.
func JourneyPath(seq []string, mode models.SankeyMode, from, to string, steps int) []string {
	if len(seq) == 0 || steps <= 0 {
		return nil
	}
	anchor := 0
	if from != "" {
		anchor = indexOf(seq, from, 0)
		if anchor < 0 {
			return nil
		}
	}

	switch mode {
	case models.SankeyBefore:
		lo := anchor - steps + 1
		if lo < 0 {
			lo = 0
		}
		return seq[lo : anchor+1]
	case models.SankeyBetween:
		if to == "" {
			return nil
		}
		end := indexOf(seq, to, anchor+1)
		if end < 0 || end-anchor+1 > steps {
			return nil
		}
		return seq[anchor : end+1]
	}
	hi := anchor + steps
	if hi > len(seq) {
		hi = len(seq)
	}
	return seq[anchor:hi]
}

func indexOf(seq []string, name string, from int) int {
	for i := from; i < len(seq); i++ {
		if seq[i] == name {
			return i
		}
	}
	return -1
}

// journeyFlows counts entries and step transitions across paths.
func journeyFlows(paths [][]string) ([]models.SankeyTransition, []models.SankeyEntry) {
	type edge struct {
		source, target string
		step           int
	}
	edges := make(map[edge]float64)
	entryCounts := make(map[string]float64)
	for _, path := range paths {
		entryCounts[path[0]]++
		for i := 1; i < len(path); i++ {
			edges[edge{path[i-1], path[i], i}]++
		}
	}

	transitions := make([]models.SankeyTransition, 0, len(edges))
	for k, v := range edges {
		transitions = append(transitions, models.SankeyTransition{Source: k.source, Target: k.target, Step: k.step, Value: v})
	}
	sort.Slice(transitions, func(a, b int) bool {
		ta, tb := transitions[a], transitions[b]
		if ta.Step != tb.Step {
			return ta.Step < tb.Step
		}
		if ta.Value != tb.Value {
			return ta.Value > tb.Value
		}
		if ta.Source != tb.Source {
			return ta.Source < tb.Source
		}
		return ta.Target < tb.Target
	})

	entries := make([]models.SankeyEntry, 0, len(entryCounts))
	for name, n := range entryCounts {
		entries = append(entries, models.SankeyEntry{Event: name, Count: n})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Count != entries[b].Count {
			return entries[a].Count > entries[b].Count
		}
		return entries[a].Event < entries[b].Event
	})
	return transitions, entries
}
