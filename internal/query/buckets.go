// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package query

import (
	"time"

	"github.com/tomtom215/reportkit/internal/models"
)

// maxBuckets bounds gap filling for wide ranges at narrow intervals.
const maxBuckets = 10000

// truncParts maps intervals to DuckDB date_trunc parts. The week part
// starts on Monday (ISO).
var truncParts = map[models.Interval]string{
	models.IntervalMinute: "minute",
	models.IntervalHour:   "hour",
	models.IntervalDay:    "day",
	models.IntervalWeek:   "week",
	models.IntervalMonth:  "month",
}

func truncPart(i models.Interval) string {
	if p, ok := truncParts[i]; ok {
		return p
	}
	return "day"
}

// BucketStart truncates t to the start of its interval bucket in UTC.
func BucketStart(t time.Time, i models.Interval) time.Time {
	t = t.UTC()
	switch i {
	case models.IntervalMinute:
		return t.Truncate(time.Minute)
	case models.IntervalHour:
		return t.Truncate(time.Hour)
	case models.IntervalWeek:
		d := startOfDay(t)
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case models.IntervalMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return startOfDay(t)
}

// NextBucket returns the start of the bucket after b.
func NextBucket(b time.Time, i models.Interval) time.Time {
	switch i {
	case models.IntervalMinute:
		return b.Add(time.Minute)
	case models.IntervalHour:
		return b.Add(time.Hour)
	case models.IntervalWeek:
		return b.AddDate(0, 0, 7)
	case models.IntervalMonth:
		return b.AddDate(0, 1, 0)
	}
	return b.AddDate(0, 0, 1)
}

// Buckets lists every bucket start intersecting [start, end).
func Buckets(start, end time.Time, i models.Interval) []time.Time {
	var out []time.Time
	for b := BucketStart(start, i); b.Before(end) && len(out) < maxBuckets; b = NextBucket(b, i) {
		out = append(out, b)
	}
	return out
}

// fillGaps returns one point per bucket, zero where counts has none.
func fillGaps(buckets []time.Time, counts map[int64]float64) []models.DataPoint {
	out := make([]models.DataPoint, len(buckets))
	for j, b := range buckets {
		out[j] = models.DataPoint{Date: b, Count: counts[b.UnixNano()]}
	}
	return out
}
