// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package services

import (
	"context"
	"time"

	"github.com/tomtom215/reportkit/internal/logging"
)

// ContextHub is satisfied by *live.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
	ClientCount() int
}

// LiveHubService runs the websocket hub under supervision.
type LiveHubService struct {
	hub  ContextHub
	name string
}

// NewLiveHubService wraps hub.
func NewLiveHubService(hub ContextHub) *LiveHubService {
	return &LiveHubService{hub: hub, name: "live-hub"}
}

// Serve delegates to the hub. A restart after a crash drops every client,
// so the count at exit is logged.
func (s *LiveHubService) Serve(ctx context.Context) error {
	started := time.Now()
	err := s.hub.RunWithContext(ctx)
	if ctx.Err() == nil {
		logging.Warn().
			Err(err).
			Int("clients", s.hub.ClientCount()).
			Dur("uptime", time.Since(started)).
			Msg("Live hub exited unexpectedly")
	}
	return err
}

func (s *LiveHubService) String() string {
	return s.name
}
