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
	"github.com/tomtom215/reportkit/internal/logging"
	"github.com/tomtom215/reportkit/internal/metrics"
	"github.com/tomtom215/reportkit/internal/models"
)

// EventStore is the connection the engine reads events from.
type EventStore interface {
	Conn() *sql.DB
	IsJSONAvailable() bool
}

// DuckDBEngine runs report queries over the events table.
type DuckDBEngine struct {
	db            *sql.DB
	jsonAvailable bool
}

// NewDuckDBEngine creates an engine over store.
func NewDuckDBEngine(store EventStore) *DuckDBEngine {
	return &DuckDBEngine{db: store.Conn(), jsonAvailable: store.IsJSONAvailable()}
}

var _ Querier = (*DuckDBEngine)(nil)

// Query computes a time series per event item, broken down and compared
// against the previous period when the payload asks for it. Formula items
// are evaluated over the event series after the fact.
func (e *DuckDBEngine) Query(ctx context.Context, p Payload) (result *models.AggregationResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery(FamilySeries, time.Since(start), err) }()

	if err := e.check(p); err != nil {
		return nil, err
	}

	var raw models.RawResult
	raw.Current, err = e.series(ctx, p, p.Start, p.End)
	if err != nil {
		return nil, err
	}
	if p.Previous {
		ps, pe := p.PreviousBounds()
		raw.Previous, err = e.series(ctx, p, ps, pe)
		if err != nil {
			return nil, err
		}
	}

	result = chart.FormatResult(raw, p.Series, chart.FormatOptions{
		Limit:    p.Limit,
		AlphaIDs: hasFormula(p.Series),
	})
	logging.Ctx(ctx).Debug().
		Str("chart_type", string(p.ChartType)).
		Int("series", len(result.Series)).
		Dur("duration", time.Since(start)).
		Msg("Series query complete")
	return result, nil
}

// check rejects payloads needing property access the store cannot give.
func (e *DuckDBEngine) check(p Payload) error {
	if !p.Interval.Valid() {
		return fmt.Errorf("%w: interval %q", ErrInvalidPayload, p.Interval)
	}
	if !p.End.After(p.Start) {
		return fmt.Errorf("%w: empty time range", ErrInvalidPayload)
	}
	if e.jsonAvailable {
		return nil
	}
	if len(p.Breakdowns) > 0 {
		return ErrJSONUnavailable
	}
	for _, item := range p.Series {
		ev, ok := item.(models.EventItem)
		if !ok {
			continue
		}
		if ev.Property != "" && needsJSON(ev.Property) {
			return ErrJSONUnavailable
		}
		for _, f := range ev.Filters {
			if needsJSON(f.Name) {
				return ErrJSONUnavailable
			}
		}
	}
	return nil
}

func (e *DuckDBEngine) series(ctx context.Context, p Payload, start, end time.Time) ([]models.RawSerie, error) {
	buckets := Buckets(start, end, p.Interval)
	out := []models.RawSerie{}

	for i, item := range p.Series {
		ev, ok := item.(models.EventItem)
		if !ok || ev.Name == "" {
			continue
		}
		rs, err := e.eventSeries(ctx, i, ev, p.Breakdowns, p.Interval, start, end, buckets)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", ev.Name, err)
		}
		out = append(out, rs...)
	}

	events := out
	for i, item := range p.Series {
		f, ok := item.(models.FormulaItem)
		if !ok || strings.TrimSpace(f.Formula) == "" {
			continue
		}
		rs, err := evaluateFormula(i, f, events, len(p.Series), buckets)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

// aggregateExpr returns the value expression for an event item's segment.
func aggregateExpr(ev models.EventItem) (string, []interface{}, error) {
	switch ev.Segment {
	case models.SegmentUser, models.SegmentOneEventPerUser:
		return "COUNT(DISTINCT profile_id)", nil, nil
	case models.SegmentSession:
		return "COUNT(DISTINCT session_id)", nil, nil
	case models.SegmentUserAverage:
		return "COALESCE(COUNT(*) / NULLIF(COUNT(DISTINCT profile_id), 0), 0)", nil, nil
	case models.SegmentPropertySum, models.SegmentPropertyAverage, models.SegmentPropertyMax, models.SegmentPropertyMin:
		if ev.Property == "" {
			return "", nil, fmt.Errorf("%w: segment %s needs a property", ErrInvalidPayload, ev.Segment)
		}
		expr, args, err := PropertyExpr(ev.Property)
		if err != nil {
			return "", nil, err
		}
		fn := map[models.Segment]string{
			models.SegmentPropertySum:     "SUM",
			models.SegmentPropertyAverage: "AVG",
			models.SegmentPropertyMax:     "MAX",
			models.SegmentPropertyMin:     "MIN",
		}[ev.Segment]
		return fmt.Sprintf("COALESCE(%s(TRY_CAST(%s AS DOUBLE)), 0)", fn, expr), args, nil
	}
	return "COUNT(*)", nil, nil
}

// eventSeries returns one raw serie per breakdown combination, each with
// a point for every bucket.
func (e *DuckDBEngine) eventSeries(ctx context.Context, index int, ev models.EventItem, breakdowns []models.Breakdown,
	interval models.Interval, start, end time.Time, buckets []time.Time) ([]models.RawSerie, error) {
	agg, aggArgs, err := aggregateExpr(ev)
	if err != nil {
		return nil, err
	}
	bdCols, bdArgs, err := breakdownSelect(breakdowns)
	if err != nil {
		return nil, err
	}
	where, whereArgs, err := NewWhereBuilder().
		AddTimeRange(start, end).
		AddClause("name = ?", ev.Name).
		AddFilters(ev.Filters).
		Build()
	if err != nil {
		return nil, err
	}

	extra := ""
	if len(bdCols) > 0 {
		extra = ", " + strings.Join(bdCols, ", ")
	}

	type bucketRow struct {
		bucket time.Time
		value  float64
		bd     []string
	}
	q := fmt.Sprintf(`SELECT date_trunc('%s', created_at) AS bucket, %s AS value%s
		FROM events WHERE %s GROUP BY ALL ORDER BY bucket`, truncPart(interval), agg, extra, where)
	args := concatArgs(aggArgs, bdArgs, whereArgs)
	rows, err := queryAndScan(ctx, e.db, q, args, func(r *sql.Rows) (bucketRow, error) {
		var row bucketRow
		var v sql.NullFloat64
		bd, err := scanBreakdowns(r, len(bdCols), &row.bucket, &v)
		row.bd = bd
		row.value = v.Float64
		row.bucket = utc(row.bucket)
		return row, err
	})
	if err != nil {
		return nil, err
	}

	type totalRow struct {
		value float64
		bd    []string
	}
	tq := fmt.Sprintf(`SELECT %s AS value%s FROM events WHERE %s GROUP BY ALL`, agg, extra, where)
	totals, err := queryAndScan(ctx, e.db, tq, args, func(r *sql.Rows) (totalRow, error) {
		var row totalRow
		var v sql.NullFloat64
		bd, err := scanBreakdowns(r, len(bdCols), &v)
		row.bd = bd
		row.value = v.Float64
		return row, err
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]map[int64]float64)
	values := make(map[string][]string)
	for _, r := range rows {
		k := strings.Join(r.bd, "\x00")
		if counts[k] == nil {
			counts[k] = make(map[int64]float64)
			values[k] = r.bd
		}
		counts[k][BucketStart(r.bucket, interval).UnixNano()] += r.value
	}
	totalByKey := make(map[string]float64, len(totals))
	for _, t := range totals {
		totalByKey[strings.Join(t.bd, "\x00")] = t.value
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.RawSerie, 0, len(keys))
	for _, k := range keys {
		bd := values[k]
		if bd == nil {
			bd = []string{}
		}
		out = append(out, models.RawSerie{
			DefinitionIndex: index,
			Event:           models.SerieEvent{ID: ev.ID, Name: ev.Name},
			Breakdowns:      bd,
			Data:            fillGaps(buckets, counts[k]),
			TotalCount:      totalByKey[k],
		})
	}
	return out, nil
}

func concatArgs(parts ...[]interface{}) []interface{} {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]interface{}, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func hasFormula(items models.SeriesList) bool {
	for _, item := range items {
		if _, ok := item.(models.FormulaItem); ok {
			return true
		}
	}
	return false
}
