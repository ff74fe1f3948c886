// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeCollector struct {
	runs  atomic.Int32
	ratio atomic.Value
	err   error
}

func (f *fakeCollector) RunGC(ratio float64) (int, error) {
	f.runs.Add(1)
	f.ratio.Store(ratio)
	return 1, f.err
}

func TestStoreGCService_Ticks(t *testing.T) {
	t.Parallel()

	store := &fakeCollector{}
	svc := NewStoreGCService(store, 5*time.Millisecond, 0.7)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(time.Second)
	for store.runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if store.runs.Load() < 2 {
		t.Errorf("Expected at least 2 GC runs, got %d", store.runs.Load())
	}
	if r, _ := store.ratio.Load().(float64); r != 0.7 {
		t.Errorf("Expected discard ratio 0.7, got %v", r)
	}
}

func TestStoreGCService_Errors(t *testing.T) {
	t.Parallel()

	gcErr := errors.New("disk full")
	tests := []struct {
		name     string
		interval time.Duration
		store    *fakeCollector
		wantErr  error
	}{
		{"gc failure ends run", 5 * time.Millisecond, &fakeCollector{err: gcErr}, gcErr},
		{"non-positive interval", 0, &fakeCollector{}, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			err := NewStoreGCService(tt.store, tt.interval, 0.5).Serve(ctx)
			if err == nil || errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("Expected a service error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
