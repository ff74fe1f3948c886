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
)

// scanFunc is a function that scans a single row into a result type
type scanFunc[T any] func(*sql.Rows) (T, error)

// queryAndScan executes a query and scans all rows using the provided scan function
func queryAndScan[T any](ctx context.Context, db *sql.DB, query string, args []interface{}, scan scanFunc[T]) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// scanBreakdowns scans a row of the form (dest..., bd0, bd1, ...) and
// returns the breakdown values.
func scanBreakdowns(rows *sql.Rows, n int, dest ...interface{}) ([]string, error) {
	values := make([]string, n)
	all := make([]interface{}, 0, len(dest)+n)
	all = append(all, dest...)
	for i := range values {
		all = append(all, &values[i])
	}
	if err := rows.Scan(all...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}
	return values, nil
}

// utc normalizes a scanned DuckDB TIMESTAMP, which has no zone.
func utc(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
