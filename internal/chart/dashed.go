// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package chart

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/reportkit/internal/models"
)

// DefaultDashPattern is the [dash, gap] pattern of the accumulating segment.
var DefaultDashPattern = [2]float64{5, 3}

// DefaultCurveCorrection widens the solid part of a curved line by this
// percentage so the dash starts on the boundary point.
const DefaultCurveCorrection = 1.0

// ComputeBoundary returns the index from which points are still
// accumulating. For the today range the last point is always live. For
// other ranges it is the most recent point in the same interval bucket as
// now; ok is false when no point shares that bucket. Minute intervals are
// bucketed by hour, and weeks are ISO weeks starting on Monday.
func ComputeBoundary(points []models.DataPoint, interval models.Interval, dr models.DateRange, now time.Time) (int, bool) {
	if len(points) == 0 {
		return 0, false
	}
	if dr == models.RangeToday {
		return len(points) - 1, true
	}
	for i := len(points) - 1; i >= 0; i-- {
		if SameBucket(points[i].Date, now, interval) {
			return i, true
		}
	}
	return 0, false
}

// SameBucket reports whether a and b fall into the same interval bucket,
// evaluated in b's location.
func SameBucket(a, b time.Time, interval models.Interval) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	switch interval {
	case models.IntervalMinute, models.IntervalHour:
		return ay == by && am == bm && ad == bd && a.Hour() == b.Hour()
	case models.IntervalDay:
		return ay == by && am == bm && ad == bd
	case models.IntervalWeek:
		aYear, aWeek := a.ISOWeek()
		bYear, bWeek := b.ISOWeek()
		return aYear == bYear && aWeek == bWeek
	case models.IntervalMonth:
		return ay == by && am == bm
	}
	return false
}

// StrokeDash is the rendering decision for one data key.
type StrokeDash struct {
	Key    string     `json:"key"`
	Dashed bool       `json:"dashed"`
	Start  int        `json:"start"`
	Dashes [2]float64 `json:"pattern"`
}

// DashedAt reports whether the point at index renders dashed.
func (d StrokeDash) DashedAt(index int) bool {
	return d.Dashed && index >= d.Start
}

// DotIndex is the index of the first point of the dashed segment, the one
// before the boundary, since the line leading into a live point is itself
// unfinished.
func (d StrokeDash) DotIndex() int {
	if d.Start <= 0 {
		return 0
	}
	return d.Start - 1
}

// Dasharray returns the SVG stroke-dasharray for a line drawn through
// points, or "" when the key is solid.
func (d StrokeDash) Dasharray(points []Point) string {
	if !d.Dashed {
		return ""
	}
	return Dasharray(points, d.DotIndex(), d.Dashes, DefaultCurveCorrection)
}

// StrokeCalculator tracks the live boundary of every rendered serie. Only
// current-period keys are ever dashed; a previous period is closed by
// definition.
type StrokeCalculator struct {
	mu         sync.Mutex
	series     []models.Serie
	interval   models.Interval
	dateRange  models.DateRange
	pattern    [2]float64
	boundaries map[string]int
	finalized  bool
}

// NewStrokeCalculator computes the boundaries of series as of now.
func NewStrokeCalculator(series []models.Serie, interval models.Interval, dr models.DateRange, now time.Time) *StrokeCalculator {
	c := &StrokeCalculator{
		series:    series,
		interval:  interval,
		dateRange: dr,
		pattern:   DefaultDashPattern,
	}
	c.boundaries = c.compute(now)
	return c
}

// compute is called with c.mu held.
func (c *StrokeCalculator) compute(now time.Time) map[string]int {
	out := make(map[string]int, len(c.series))
	for _, s := range c.series {
		if idx, ok := ComputeBoundary(s.Data, c.interval, c.dateRange, now); ok {
			out[s.ID] = idx
		}
	}
	return out
}

// Recompute re-evaluates the boundaries for a new now. It is idempotent and
// reports whether any boundary moved; only then is the finalized signal
// cleared so the layout pass runs again.
func (c *StrokeCalculator) Recompute(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.compute(now)
	if equalBoundaries(c.boundaries, next) {
		return false
	}
	c.boundaries = next
	c.finalized = false
	return true
}

// Reset swaps in freshly queried series and recomputes their boundaries as
// of now. Like Recompute, the finalized signal is cleared only when a
// boundary differs from the previous render.
func (c *StrokeCalculator) Reset(series []models.Serie, interval models.Interval, dr models.DateRange, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series = series
	c.interval = interval
	c.dateRange = dr
	next := c.compute(now)
	if equalBoundaries(c.boundaries, next) {
		return false
	}
	c.boundaries = next
	c.finalized = false
	return true
}

func equalBoundaries(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// DashFor returns the dash decision for a data key. Key may be a bare serie
// id or a CountKey; previous-period keys are always solid.
func (c *StrokeCalculator) DashFor(key string) StrokeDash {
	out := StrokeDash{Key: key, Dashes: c.pattern}
	if strings.HasSuffix(key, ":prev:count") {
		return out
	}
	id := strings.TrimSuffix(key, ":count")

	c.mu.Lock()
	defer c.mu.Unlock()
	if idx, ok := c.boundaries[id]; ok {
		out.Dashed = true
		out.Start = idx
	}
	return out
}

// Boundary returns the live boundary of a serie.
func (c *StrokeCalculator) Boundary(serieID string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok := c.boundaries[serieID]
	return idx, ok
}

// Dashes returns the decisions for every serie's CountKey, in serie order.
func (c *StrokeCalculator) Dashes() []StrokeDash {
	c.mu.Lock()
	series := c.series
	c.mu.Unlock()

	out := make([]StrokeDash, 0, len(series))
	for _, s := range series {
		out = append(out, c.DashFor(CountKey(s.ID)))
	}
	return out
}

// Finalize acknowledges that the one-shot layout pass has completed.
func (c *StrokeCalculator) Finalize() {
	c.mu.Lock()
	c.finalized = true
	c.mu.Unlock()
}

// Finalized reports whether the pattern has been acknowledged since the
// last boundary change.
func (c *StrokeCalculator) Finalized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finalized
}

// Point is a rendered point in screen coordinates.
type Point struct {
	X float64
	Y float64
}

// lineLength sums the segment lengths through points.
func lineLength(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		dx := points[i].X - points[i-1].X
		dy := math.Abs(points[i].Y - points[i-1].Y)
		total += math.Sqrt(dx*dx + dy*dy)
	}
	return total
}

// Dasharray builds a stroke-dasharray that draws the line solid up to
// dotIndex and dashed after it. A negative dotIndex counts from the end,
// so -2 dashes only the last segment. curveCorrection is a percentage added
// to the solid length. It returns "" when either part has no length.
func Dasharray(points []Point, dotIndex int, pattern [2]float64, curveCorrection float64) string {
	start := dotIndex
	if start < 0 {
		start += len(points)
		if start < 0 {
			start = 0
		}
	}
	if start > len(points) {
		start = len(points)
	}

	total := lineLength(points)
	dashed := lineLength(points[start:])
	if total == 0 || dashed == 0 {
		return ""
	}

	solid := total - dashed
	solid += solid * curveCorrection / 100

	period := pattern[0] + pattern[1]
	if period == 0 {
		period = 1
	}
	unit := formatFloat(pattern[0]) + " " + formatFloat(pattern[1])
	repeats := int(math.Ceil(dashed / period))

	parts := make([]string, 0, repeats+1)
	parts = append(parts, formatFloat(solid))
	for i := 0; i < repeats; i++ {
		parts = append(parts, unit)
	}
	return strings.Join(parts, " ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
