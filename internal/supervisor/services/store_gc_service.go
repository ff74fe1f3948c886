// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/reportkit/internal/logging"
)

// ValueLogCollector is satisfied by *store.BadgerStore.
type ValueLogCollector interface {
	RunGC(discardRatio float64) (int, error)
}

// StoreGCService compacts the report store's value log on a fixed interval.
type StoreGCService struct {
	store        ValueLogCollector
	interval     time.Duration
	discardRatio float64
	name         string
}

// NewStoreGCService creates the service. interval must be positive.
func NewStoreGCService(store ValueLogCollector, interval time.Duration, discardRatio float64) *StoreGCService {
	return &StoreGCService{
		store:        store,
		interval:     interval,
		discardRatio: discardRatio,
		name:         "store-gc",
	}
}

// Serve implements suture.Service. A GC failure ends the run so the
// supervisor backs off and restarts it.
func (s *StoreGCService) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("store gc interval must be positive, got %v", s.interval)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			n, err := s.store.RunGC(s.discardRatio)
			if err != nil {
				return fmt.Errorf("report store gc: %w", err)
			}
			if n > 0 {
				logging.Info().
					Int("rewritten", n).
					Dur("duration", time.Since(start)).
					Msg("Report store value log compacted")
			}
		}
	}
}

func (s *StoreGCService) String() string {
	return s.name
}
