// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package query

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reportkit/internal/models"
)

// Payload is the query-relevant projection of a report definition with
// its date range resolved to concrete half-open UTC bounds.
type Payload struct {
	ChartType  models.ChartType   `json:"chart_type"`
	Interval   models.Interval    `json:"interval"`
	Series     models.SeriesList  `json:"series"`
	Breakdowns []models.Breakdown `json:"breakdowns"`
	Range      models.DateRange   `json:"range"`
	Start      time.Time          `json:"start"`
	End        time.Time          `json:"end"`
	Previous   bool               `json:"previous"`
	Formula    string             `json:"formula,omitempty"`
	Metric     models.Metric      `json:"metric"`
	Limit      int                `json:"limit"`
	Options    models.Options     `json:"-"`
}

// PayloadFrom builds the payload for def at now. Chart types that ignore
// breakdowns or previous-period comparison get them cleared, so that
// toggling them does not change the key.
func PayloadFrom(def models.ReportDefinition, now time.Time) Payload {
	start, end := RangeBounds(def.Range, def.StartDate, def.EndDate, now)
	p := Payload{
		ChartType:  def.ChartType,
		Interval:   def.Interval,
		Series:     def.Series.Clone(),
		Breakdowns: append([]models.Breakdown{}, def.Breakdowns...),
		Range:      def.Range,
		Start:      start,
		End:        end,
		Previous:   def.Previous,
		Formula:    def.Formula,
		Metric:     def.Metric,
		Limit:      def.Limit,
		Options:    models.CloneOptions(def.Options),
	}
	if !def.ChartType.SupportsBreakdowns() {
		p.Breakdowns = []models.Breakdown{}
	}
	if !def.ChartType.SupportsPrevious() {
		p.Previous = false
	}
	return p
}

// PreviousBounds returns the window of equal length ending where p starts.
func (p Payload) PreviousBounds() (time.Time, time.Time) {
	d := p.End.Sub(p.Start)
	return p.Start.Add(-d), p.Start
}

// Key is a stable hash of everything the result depends on.
func Key(p Payload) string {
	h := sha256.New()
	body, err := json.Marshal(p)
	if err != nil {
		// unreachable: every payload field marshals
		body = []byte(p.Range)
	}
	h.Write(body)
	if p.Options != nil {
		if opts, err := models.MarshalOptions(p.Options); err == nil {
			h.Write(opts)
		}
	}
	h.Write([]byte(p.ChartType))
	return hex.EncodeToString(h.Sum(nil))
}

// DefinitionKey hashes the query-relevant parts of def independently of
// the current time. Two definitions with equal keys always query the same
// thing, so a session only starts a new query cycle when it changes.
func DefinitionKey(def models.ReportDefinition) string {
	return Key(PayloadFrom(def, time.Time{}))
}

// RangeBounds resolves a named range to [start, end) in UTC. Custom ranges
// use the given dates, with end inclusive of its whole day; a missing
// custom start falls back to 30 days before end.
func RangeBounds(r models.DateRange, startDate, endDate *time.Time, now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	minute := now.Truncate(time.Minute)
	today := startOfDay(now)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	year := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)

	switch r {
	case models.Range30Min:
		return minute.Add(-30 * time.Minute), minute.Add(time.Minute)
	case models.RangeLastHour:
		return minute.Add(-time.Hour), minute.Add(time.Minute)
	case models.RangeToday:
		return today, today.AddDate(0, 0, 1)
	case models.RangeYesterday:
		return today.AddDate(0, 0, -1), today
	case models.Range7Days:
		return today.AddDate(0, 0, -7), today.AddDate(0, 0, 1)
	case models.Range6Months:
		return today.AddDate(0, -6, 0), today.AddDate(0, 0, 1)
	case models.Range12Months:
		return month.AddDate(0, -12, 0), month.AddDate(0, 1, 0)
	case models.RangeMonthToDate:
		return month, today.AddDate(0, 0, 1)
	case models.RangeLastMonth:
		return month.AddDate(0, -1, 0), month
	case models.RangeYearToDate:
		return year, today.AddDate(0, 0, 1)
	case models.RangeLastYear:
		return year.AddDate(-1, 0, 0), year
	case models.RangeCustom:
		if endDate != nil {
			end := startOfDay(endDate.UTC()).AddDate(0, 0, 1)
			if startDate != nil {
				start := startOfDay(startDate.UTC())
				if start.Before(end) {
					return start, end
				}
			}
			return end.AddDate(0, 0, -30), end
		}
	}
	return today.AddDate(0, 0, -30), today.AddDate(0, 0, 1)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
