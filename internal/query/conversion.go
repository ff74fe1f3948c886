// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/reportkit/internal/chart"
	"github.com/tomtom215/reportkit/internal/metrics"
	"github.com/tomtom215/reportkit/internal/models"
)

// Conversion computes, per bucket, the share of groups doing the first
// event item that went on to do the last one within the funnel window.
func (e *DuckDBEngine) Conversion(ctx context.Context, p Payload) (result *models.ConversionResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery(FamilyConversion, time.Since(start), err) }()

	if err := e.check(p); err != nil {
		return nil, err
	}
	result = &models.ConversionResult{Current: []models.ConversionSerie{}}
	events := chart.FunnelEvents(p.Series)
	if len(events) < 2 {
		return result, nil
	}

	opts := funnelOptions(p)
	result.Current, err = e.conversion(ctx, p, events, opts, p.Start, p.End)
	if err != nil {
		return nil, err
	}
	if p.Previous {
		ps, pe := p.PreviousBounds()
		result.Previous, err = e.conversion(ctx, p, events, opts, ps, pe)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (e *DuckDBEngine) conversion(ctx context.Context, p Payload, events []models.EventItem, opts models.FunnelOptions,
	start, end time.Time) ([]models.ConversionSerie, error) {
	first, last := events[0], events[len(events)-1]
	window := time.Duration(opts.WindowHours() * float64(time.Hour))
	group := groupColumn(opts.Group())

	bdCols, bdArgs, err := breakdownSelect(p.Breakdowns)
	if err != nil {
		return nil, err
	}
	whereA, argsA, err := NewWhereBuilder().AddTimeRange(start, end).
		AddClause("name = ?", first.Name).AddFilters(first.Filters).Build()
	if err != nil {
		return nil, err
	}
	whereB, argsB, err := NewWhereBuilder().AddTimeRange(start, end.Add(window)).
		AddClause("name = ?", last.Name).AddFilters(last.Filters).Build()
	if err != nil {
		return nil, err
	}

	bdSelect, bdOuter := "", ""
	if len(bdCols) > 0 {
		bdSelect = ", " + strings.Join(bdCols, ", ")
		outer := make([]string, len(bdCols))
		for i := range outer {
			outer[i] = fmt.Sprintf("a.bd%d", i)
		}
		bdOuter = ", " + strings.Join(outer, ", ")
	}

	q := fmt.Sprintf(`WITH a AS (
			SELECT %[1]s AS g, date_trunc('%[2]s', created_at) AS d, MIN(created_at) AS t%[3]s
			FROM events WHERE %[4]s GROUP BY ALL
		), b AS (
			SELECT %[1]s AS g, created_at AS t FROM events WHERE %[5]s
		)
		SELECT a.d,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE EXISTS (
				SELECT 1 FROM b WHERE b.g = a.g AND b.t >= a.t AND b.t <= a.t + to_seconds(CAST(? AS BIGINT))
			)) AS conversions%[6]s
		FROM a GROUP BY ALL ORDER BY a.d`,
		group, truncPart(p.Interval), bdSelect, whereA, whereB, bdOuter)
	args := concatArgs(bdArgs, argsA, argsB, []interface{}{int64(window / time.Second)})

	rows, err := queryAndScan(ctx, e.db, q, args, func(r *sql.Rows) (chart.ConversionRow, error) {
		var row chart.ConversionRow
		bd, err := scanBreakdowns(r, len(bdCols), &row.Date, &row.Total, &row.Conversions)
		row.Date = utc(row.Date)
		row.Breakdowns = bd
		row.Rate = chart.ConversionRate(row.Conversions, row.Total)
		return row, err
	})
	if err != nil {
		return nil, err
	}
	return chart.GroupConversion(rows, len(bdCols)), nil
}
