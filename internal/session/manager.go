// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package session

import (
	"sort"
	"sync"

	"github.com/tomtom215/reportkit/internal/models"
	"github.com/tomtom215/reportkit/internal/query"
)

// Manager holds one open session per report id.
type Manager struct {
	querier query.Querier
	opts    Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager returns a manager whose sessions query through q.
func NewManager(q query.Querier, opts Options) *Manager {
	return &Manager{
		querier:  q,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Open returns the session for id, creating it from def when none is open.
// def is ignored for an existing session.
func (m *Manager) Open(id string, def models.ReportDefinition) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, false
	}
	s := New(id, def, m.querier, m.opts)
	m.sessions[id] = s
	return s, true
}

// Get returns the open session for id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close closes and forgets the session for id.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

// CloseAll closes every open session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

// IDs returns the ids of the open sessions, sorted.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
