// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/reportkit/internal/live"
)

type crashingHub struct{ err error }

func (h crashingHub) RunWithContext(context.Context) error { return h.err }
func (h crashingHub) ClientCount() int                     { return 0 }

func TestLiveHubService_RunsHub(t *testing.T) {
	t.Parallel()

	hub := live.NewHub(live.Config{MaxClients: 4, Rate: 10, Burst: 2})
	svc := NewLiveHubService(hub)
	if svc.String() != "live-hub" {
		t.Errorf("Expected name live-hub, got %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Expected clean stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Hub did not stop")
	}
}

func TestLiveHubService_UnexpectedExit(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := NewLiveHubService(crashingHub{err: boom}).Serve(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Expected hub error, got %v", err)
	}
}
