// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tomtom215/reportkit/internal/logging"
)

const (
	demoDays        = 30
	demoProfiles    = 40
	demoSessionsDay = 25
)

// demoFlow is the ordered path a demo session walks; each session stops
// after a random number of steps so funnels and sankeys have drop-off.
var demoFlow = []string{"screen_view", "pricing_view", "signup", "purchase"}

var (
	demoCountries = []string{"SE", "US", "DE", "GB", "FR"}
	demoBrowsers  = []string{"chrome", "firefox", "safari"}
	demoPaths     = []string{"/", "/docs", "/blog", "/pricing"}
)

// SeedDemoEvents fills an empty event store with a deterministic month of
// sessions ending at now. It does nothing if events already exist.
func (db *DB) SeedDemoEvents(ctx context.Context, now time.Time) error {
	n, err := db.CountEvents(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logging.Debug().Int64("events", n).Msg("Event store not empty, skipping demo seed")
		return nil
	}

	events := DemoEvents(now, rand.New(rand.NewSource(42))) //nolint:gosec // demo data only
	if err := db.InsertEvents(ctx, events); err != nil {
		return fmt.Errorf("seed demo events: %w", err)
	}
	logging.Info().Int("events", len(events)).Msg("Seeded demo events")
	return nil
}

// DemoEvents generates the demo event set using rng.
func DemoEvents(now time.Time, rng *rand.Rand) []Event {
	start := now.UTC().Truncate(24*time.Hour).AddDate(0, 0, -demoDays+1)
	var out []Event

	for d := 0; d < demoDays; d++ {
		day := start.AddDate(0, 0, d)
		for s := 0; s < demoSessionsDay; s++ {
			profile := fmt.Sprintf("profile-%02d", rng.Intn(demoProfiles))
			session := fmt.Sprintf("session-%d-%d", d, s)
			at := day.Add(time.Duration(rng.Intn(22*3600)) * time.Second)
			if at.After(now) {
				continue
			}
			props := map[string]any{
				"country": demoCountries[rng.Intn(len(demoCountries))],
				"browser": demoBrowsers[rng.Intn(len(demoBrowsers))],
				"path":    demoPaths[rng.Intn(len(demoPaths))],
			}

			steps := 1 + rng.Intn(len(demoFlow))
			for i := 0; i < steps; i++ {
				out = append(out, Event{
					Name:       demoFlow[i],
					ProfileID:  profile,
					SessionID:  session,
					CreatedAt:  at.Add(time.Duration(i) * 3 * time.Minute),
					Properties: props,
				})
			}
		}
	}
	return out
}
