// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer names one of the child supervisors under the root.
type Layer string

const (
	// LayerData holds storage maintenance such as report store GC.
	LayerData Layer = "data"

	// LayerLive holds the websocket hub and the live refresher.
	LayerLive Layer = "live"

	// LayerAPI holds the HTTP server.
	LayerAPI Layer = "api"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	// Default: 5
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay in seconds.
	// Default: 30
	FailureDecay float64

	// FailureBackoff is the duration to wait when threshold is exceeded.
	// Default: 15s
	FailureBackoff time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

// SupervisorTree runs ReportKit's long-lived services.
//
// The root "reportkit" supervisor owns three layers:
//   - data: report store maintenance
//   - live: websocket hub and live refresher
//   - api: HTTP server
//
// A crash loop in the live layer leaves the API serving plain chart requests.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	logger *slog.Logger
	config TreeConfig
}

// NewSupervisorTree creates a tree. Zero config values take defaults.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	if logger == nil {
		return nil, fmt.Errorf("supervisor tree requires a logger")
	}
	config = config.withDefaults()

	// MustHook has a pointer receiver.
	eventHook := (&sutureslog.Handler{Logger: logger}).MustHook()

	spec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}
	rootSpec := spec
	rootSpec.EventHook = eventHook

	t := &SupervisorTree{
		root:   suture.New("reportkit", rootSpec),
		layers: make(map[Layer]*suture.Supervisor, 3),
		logger: logger,
		config: config,
	}
	// Children inherit the root's event hook once added.
	for _, layer := range []Layer{LayerData, LayerLive, LayerAPI} {
		sup := suture.New(string(layer)+"-layer", spec)
		t.layers[layer] = sup
		t.root.Add(sup)
	}
	return t, nil
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// Add adds svc to the given layer.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) (suture.ServiceToken, error) {
	sup, ok := t.layers[layer]
	if !ok {
		return suture.ServiceToken{}, fmt.Errorf("unknown supervisor layer %q", layer)
	}
	t.logger.Debug("adding supervised service", "layer", string(layer), "service", fmt.Sprint(svc))
	return sup.Add(svc), nil
}

// AddDataService adds a service to the data layer.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	return t.layers[LayerData].Add(svc)
}

// AddLiveService adds a service to the live layer.
func (t *SupervisorTree) AddLiveService(svc suture.Service) suture.ServiceToken {
	return t.layers[LayerLive].Add(svc)
}

// AddAPIService adds a service to the API layer.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.layers[LayerAPI].Add(svc)
}

// Remove stops and removes a service added to layer.
func (t *SupervisorTree) Remove(layer Layer, token suture.ServiceToken) error {
	sup, ok := t.layers[layer]
	if !ok {
		return fmt.Errorf("unknown supervisor layer %q", layer)
	}
	return sup.Remove(token)
}

// RemoveAndWait removes a service and waits up to timeout for it to stop.
func (t *SupervisorTree) RemoveAndWait(layer Layer, token suture.ServiceToken, timeout time.Duration) error {
	sup, ok := t.layers[layer]
	if !ok {
		return fmt.Errorf("unknown supervisor layer %q", layer)
	}
	return sup.RemoveAndWait(token, timeout)
}

// Serve runs the tree until ctx is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in a goroutine. The returned channel
// receives the result when the tree stops.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that missed the shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
