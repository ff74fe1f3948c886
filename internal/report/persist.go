// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package report

import (
	"time"

	"github.com/tomtom215/reportkit/internal/models"
)

// ForPersistence returns the payload stored on save: a copy of def with
// the session-local lifecycle flags cleared.
func ForPersistence(def models.ReportDefinition) models.ReportDefinition {
	out := def.Clone()
	out.Ready = false
	out.Dirty = false
	return out
}

// FromPersisted returns a loaded definition with lifecycle flags defaulted
// and interval/options legality restored, since stored payloads may predate
// the current rules.
func FromPersisted(def models.ReportDefinition) models.ReportDefinition {
	out := def.Clone()
	out.Ready = false
	out.Dirty = false
	if out.Series == nil {
		out.Series = models.SeriesList{}
	}
	if out.Breakdowns == nil {
		out.Breakdowns = []models.Breakdown{}
	}
	normalizeOptions(&out)
	out.Interval = NormalizeInterval(out.Interval, out.Range)
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
