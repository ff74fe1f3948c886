// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package live

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/reportkit/internal/chart"
	"github.com/tomtom215/reportkit/internal/logging"
	"github.com/tomtom215/reportkit/internal/session"
)

// Sessions is the part of session.Manager the refresher reads.
type Sessions interface {
	Get(id string) (*session.Session, bool)
}

// Refresher periodically re-queries subscribed reports over live ranges and
// pushes the recomputed chart to their clients.
type Refresher struct {
	hub      *Hub
	sessions Sessions
	interval time.Duration
	cap      int
	now      func() time.Time
}

// NewRefresher creates a refresher ticking every interval.
func NewRefresher(hub *Hub, sessions Sessions, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Refresher{
		hub:      hub,
		sessions: sessions,
		interval: interval,
		cap:      chart.DefaultVisibleCap,
		now:      time.Now,
	}
}

// SetVisibleCap sets the series cap for pushed charts. n <= 0 is ignored.
func (r *Refresher) SetVisibleCap(n int) {
	if n > 0 {
		r.cap = n
	}
}

// Serve implements suture.Service.
func (r *Refresher) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", r.interval).Msg("live refresher started")
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("live refresher stopped")
			return ctx.Err()
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (r *Refresher) String() string {
	return "live-refresher"
}

// Tick refreshes every subscribed live report once and returns how many
// chart updates were published.
func (r *Refresher) Tick(ctx context.Context) int {
	published := 0
	for _, id := range r.hub.Subscriptions() {
		if ctx.Err() != nil {
			return published
		}
		sess, ok := r.sessions.Get(id)
		if !ok || !sess.Definition().Range.Live() {
			continue
		}

		err := sess.Refresh(ctx)
		switch {
		case errors.Is(err, session.ErrStale), errors.Is(err, session.ErrClosed):
			continue
		case err != nil:
			// The error state is still pushed so clients stop showing stale data.
			logging.Warn().Err(err).Str("report_id", id).Msg("live refresh failed")
		}

		now := r.now()
		if sess.Recompute(now) {
			logging.Debug().Str("report_id", id).Msg("dashed boundary moved")
		}
		if r.hub.Publish(id, MessageTypeChartUpdated, sess.Chart(now, r.cap)) {
			published++
		}
	}
	return published
}
