// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService blocks until canceled, optionally failing the first few runs.
type mockService struct {
	name     string
	starts   atomic.Int32
	stops    atomic.Int32
	runs     atomic.Int32
	failures int32
}

func newMockService(name string, failures int) *mockService {
	return &mockService{name: name, failures: int32(failures)}
}

func (m *mockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	defer m.stops.Add(1)

	if m.runs.Add(1) <= m.failures {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}
