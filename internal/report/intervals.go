// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package report

import (
	"time"

	"github.com/tomtom215/reportkit/internal/models"
)

// IsMinuteAllowed reports whether minute buckets are permitted for r.
func IsMinuteAllowed(r models.DateRange) bool {
	switch r {
	case models.Range30Min, models.RangeLastHour, models.RangeCustom:
		return true
	}
	return false
}

// IsHourAllowed reports whether hour buckets are permitted for r.
func IsHourAllowed(r models.DateRange) bool {
	switch r {
	case models.Range30Min, models.RangeLastHour, models.RangeToday,
		models.RangeYesterday, models.Range7Days, models.RangeCustom:
		return true
	}
	return false
}

// isNarrowRange reports whether r spans at most a single day.
func isNarrowRange(r models.DateRange) bool {
	switch r {
	case models.Range30Min, models.RangeLastHour, models.RangeToday, models.RangeYesterday:
		return true
	}
	return false
}

// IsWeekAllowed reports whether week buckets are permitted for r.
func IsWeekAllowed(r models.DateRange) bool {
	return !isNarrowRange(r) && r != models.Range7Days
}

// IsMonthAllowed reports whether month buckets are permitted for r.
func IsMonthAllowed(r models.DateRange) bool {
	return !isNarrowRange(r)
}

// IntervalAllowed reports whether interval i may be used with range r.
func IntervalAllowed(i models.Interval, r models.DateRange) bool {
	switch i {
	case models.IntervalMinute:
		return IsMinuteAllowed(r)
	case models.IntervalHour:
		return IsHourAllowed(r)
	case models.IntervalDay:
		return true
	case models.IntervalWeek:
		return IsWeekAllowed(r)
	case models.IntervalMonth:
		return IsMonthAllowed(r)
	}
	return false
}

// NormalizeInterval returns i if it is allowed for r, otherwise the first
// allowed value along its downgrade chain. Minute degrades to hour then
// day, week to day, month to week then day. Day is always allowed.
func NormalizeInterval(i models.Interval, r models.DateRange) models.Interval {
	if IntervalAllowed(i, r) {
		return i
	}
	var chain []models.Interval
	switch i {
	case models.IntervalMinute:
		chain = []models.Interval{models.IntervalHour, models.IntervalDay}
	case models.IntervalMonth:
		chain = []models.Interval{models.IntervalWeek, models.IntervalDay}
	default:
		chain = []models.Interval{models.IntervalDay}
	}
	for _, next := range chain {
		if IntervalAllowed(next, r) {
			return next
		}
	}
	return models.IntervalDay
}

// DefaultIntervalForRange returns the interval a range starts with.
func DefaultIntervalForRange(r models.DateRange) models.Interval {
	switch r {
	case models.Range30Min, models.RangeLastHour:
		return models.IntervalMinute
	case models.RangeToday, models.RangeYesterday:
		return models.IntervalHour
	case models.Range7Days, models.Range30Days, models.RangeLastMonth, models.RangeMonthToDate:
		return models.IntervalDay
	}
	return models.IntervalMonth
}

// IntervalFromDates derives an interval from an explicit window. It returns
// false when either bound is missing.
func IntervalFromDates(start, end *time.Time) (models.Interval, bool) {
	if start == nil || end == nil {
		return "", false
	}
	s, e := *start, *end
	sy, sm, sd := s.Date()
	ey, em, ed := e.In(s.Location()).Date()
	switch {
	case sy == ey && sm == em && sd == ed:
		return models.IntervalHour, true
	case sy == ey && sm == em:
		return models.IntervalDay, true
	case daysBetween(s, e) <= 31:
		return models.IntervalDay, true
	}
	return models.IntervalMonth, true
}

// daysBetween returns the number of full days from a to b, truncated toward zero.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
