// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package query

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/reportkit/internal/chart"
	"github.com/tomtom215/reportkit/internal/metrics"
	"github.com/tomtom215/reportkit/internal/models"
)

// Retention groups profiles into cohorts by the bucket of their first
// start event and counts, per later bucket, how many came back with the
// return event. The first event item starts a cohort and the last one
// counts as a return; a single item is both.
func (e *DuckDBEngine) Retention(ctx context.Context, p Payload) (cohorts []models.RetentionCohort, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery(FamilyRetention, time.Since(start), err) }()

	if err := e.check(p); err != nil {
		return nil, err
	}
	events := chart.FunnelEvents(p.Series)
	if len(events) == 0 {
		return []models.RetentionCohort{}, nil
	}
	first, last := events[0], events[len(events)-1]
	criteria := models.CriteriaOn
	if o, ok := p.Options.(models.RetentionOptions); ok && o.Criteria != "" {
		criteria = o.Criteria
	}

	whereFirst, argsFirst, err := NewWhereBuilder().AddTimeRange(p.Start, p.End).
		AddClause("name = ?", first.Name).AddFilters(first.Filters).Build()
	if err != nil {
		return nil, err
	}
	whereLast, argsLast, err := NewWhereBuilder().AddTimeRange(p.Start, p.End).
		AddClause("name = ?", last.Name).AddFilters(last.Filters).Build()
	if err != nil {
		return nil, err
	}

	part := truncPart(p.Interval)
	q := fmt.Sprintf(`WITH c AS (
			SELECT profile_id, MIN(date_trunc('%[1]s', created_at)) AS cohort
			FROM events WHERE %[2]s GROUP BY profile_id
		), a AS (
			SELECT DISTINCT profile_id, date_trunc('%[1]s', created_at) AS period
			FROM events WHERE %[3]s
		)
		SELECT c.cohort, c.profile_id, a.period
		FROM c LEFT JOIN a ON a.profile_id = c.profile_id AND a.period > c.cohort
		ORDER BY c.cohort, c.profile_id`, part, whereFirst, whereLast)

	rows, err := queryAndScan(ctx, e.db, q, concatArgs(argsFirst, argsLast), func(r *sql.Rows) (retentionRow, error) {
		var row retentionRow
		err := r.Scan(&row.cohort, &row.profile, &row.period)
		row.cohort = utc(row.cohort)
		if row.period.Valid {
			row.period.Time = utc(row.period.Time)
		}
		return row, err
	})
	if err != nil {
		return nil, err
	}

	return buildCohorts(groupActivity(rows), Buckets(p.Start, p.End, p.Interval), p.Interval, criteria), nil
}

type retentionRow struct {
	cohort  time.Time
	profile string
	period  sql.NullTime
}

// cohortActivity is one profile in a cohort with the buckets it returned in.
type cohortActivity struct {
	cohort  time.Time
	profile string
	periods []time.Time
}

// groupActivity folds rows ordered by cohort and profile into one entry
// per profile.
func groupActivity(rows []retentionRow) []cohortActivity {
	var out []cohortActivity
	for _, r := range rows {
		n := len(out)
		if n == 0 || !out[n-1].cohort.Equal(r.cohort) || out[n-1].profile != r.profile {
			out = append(out, cohortActivity{cohort: r.cohort, profile: r.profile})
			n++
		}
		if r.period.Valid {
			out[n-1].periods = append(out[n-1].periods, r.period.Time)
		}
	}
	return out
}

// buildCohorts counts returning profiles per period offset. With
// CriteriaOn a profile counts in every period it was active in; with
// CriteriaOnOrAfter it counts in every period up to its last return.
// Values[0] is the cohort size.
func buildCohorts(activity []cohortActivity, buckets []time.Time, interval models.Interval, criteria models.Criteria) []models.RetentionCohort {
	index := make(map[int64]int, len(buckets))
	for i, b := range buckets {
		index[b.UnixNano()] = i
	}

	var out []models.RetentionCohort
	byCohort := make(map[int64]int)
	for _, a := range activity {
		start, ok := index[BucketStart(a.cohort, interval).UnixNano()]
		if !ok {
			continue
		}
		pos, seen := byCohort[a.cohort.UnixNano()]
		if !seen {
			pos = len(out)
			byCohort[a.cohort.UnixNano()] = pos
			out = append(out, models.RetentionCohort{
				CohortInterval: a.cohort.Format(cohortLayout(interval)),
				Values:         make([]float64, len(buckets)-start),
			})
		}
		c := &out[pos]
		c.Sum++
		c.Values[0]++

		furthest := 0
		hit := make(map[int]bool)
		for _, p := range a.periods {
			i, ok := index[BucketStart(p, interval).UnixNano()]
			if !ok || i <= start {
				continue
			}
			offset := i - start
			hit[offset] = true
			if offset > furthest {
				furthest = offset
			}
		}
		if criteria == models.CriteriaOnOrAfter {
			for k := 1; k <= furthest; k++ {
				c.Values[k]++
			}
			continue
		}
		for k := range hit {
			c.Values[k]++
		}
	}
	if out == nil {
		return []models.RetentionCohort{}
	}
	return out
}

func cohortLayout(i models.Interval) string {
	switch i {
	case models.IntervalMinute, models.IntervalHour:
		return "2006-01-02 15:04"
	case models.IntervalMonth:
		return "2006-01"
	}
	return "2006-01-02"
}
