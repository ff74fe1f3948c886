// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/reportkit/internal/chart"
	"github.com/tomtom215/reportkit/internal/config"
	"github.com/tomtom215/reportkit/internal/debounce"
	"github.com/tomtom215/reportkit/internal/logging"
	"github.com/tomtom215/reportkit/internal/metrics"
	"github.com/tomtom215/reportkit/internal/models"
	"github.com/tomtom215/reportkit/internal/query"
	"github.com/tomtom215/reportkit/internal/report"
)

// ErrStale is returned by Refresh when the definition changed while the
// query was running. The result was discarded.
var ErrStale = errors.New("stale query result discarded")

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// State is the lifecycle of a session's query result.
type State string

const (
	// StateIdle is a lazy session that has not been refreshed yet.
	StateIdle    State = "idle"
	StateLoading State = "loading"
	// StateEmpty is a successful query that returned no data.
	StateEmpty   State = "empty"
	StateError   State = "error"
	StateSuccess State = "success"
)

// Result is the committed outcome of the last query. Exactly one of the
// family fields is set on success, matching Family.
type Result struct {
	State      State
	Family     string
	Err        error
	Generation uint64
	UpdatedAt  time.Time

	Series     *models.AggregationResult
	Funnel     *models.FunnelComparison
	Conversion *models.ConversionResult
	Retention  []models.RetentionCohort
	Sankey     *models.SankeyResult
}

// Options controls session behavior.
type Options struct {
	Lazy           bool
	DebounceWindow time.Duration
	VisibleCap     int
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// OptionsFromConfig converts the report config section.
func OptionsFromConfig(cfg config.ReportConfig) Options {
	return Options{
		Lazy:           cfg.Lazy,
		DebounceWindow: cfg.DebounceWindow,
		VisibleCap:     cfg.VisibleCap,
	}
}

// Session owns one report definition and the result of querying it.
// Dispatch is the single writer of the definition: actions apply in call
// order. Refresh may run concurrently with Dispatch; a refresh whose
// definition changed underneath it never commits.
type Session struct {
	id      string
	querier query.Querier
	opts    Options

	mu         sync.RWMutex
	def        models.ReportDefinition
	key        string
	generation uint64
	enabled    bool
	closed     bool
	result     Result
	visible    *chart.VisibleSet
	stroke     *chart.StrokeCalculator

	editMu  sync.Mutex
	edits   map[string]*debounce.Debouncer[edit]
	onApply func(models.ReportDefinition)
}

// New creates a session for def. A lazy session starts idle; otherwise it
// starts loading and waits for its first Refresh.
func New(id string, def models.ReportDefinition, q query.Querier, opts Options) *Session {
	if opts.VisibleCap == 0 {
		opts.VisibleCap = chart.DefaultVisibleCap
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Session{
		id:      id,
		querier: q,
		opts:    opts,
		def:     def,
		key:     query.DefinitionKey(def),
		enabled: !opts.Lazy,
		edits:   make(map[string]*debounce.Debouncer[edit]),
	}
	s.result.State = StateLoading
	if opts.Lazy {
		s.result.State = StateIdle
	}

	metrics.TrackSession(true)
	return s
}

// ID returns the report id the session was opened for.
func (s *Session) ID() string { return s.id }

// Definition returns a copy of the current definition.
func (s *Session) Definition() models.ReportDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.def.Clone()
}

// Generation returns the current definition generation. It advances only
// when an action changes what would be queried.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Result returns the committed result.
func (s *Session) Result() Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// State returns the committed result state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result.State
}

// OnApply registers fn to receive the definition after every dispatched
// action, including debounced edits. fn runs without the session lock held.
func (s *Session) OnApply(fn func(models.ReportDefinition)) {
	s.editMu.Lock()
	s.onApply = fn
	s.editMu.Unlock()
}

// Dispatch applies action to the definition and returns the new
// definition. When the query payload changed, the generation advances and
// any in-flight refresh becomes stale.
func (s *Session) Dispatch(action report.Action) (models.ReportDefinition, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.ReportDefinition{}, ErrClosed
	}

	s.def = report.Apply(s.def, action)
	next := query.DefinitionKey(s.def)
	changed := next != s.key
	if changed {
		s.key = next
		s.generation++
		s.visible = nil
		s.stroke = nil
		if s.enabled {
			s.result = Result{State: StateLoading, Generation: s.generation}
		}
	}
	def := s.def.Clone()
	gen := s.generation
	s.mu.Unlock()

	metrics.RecordReportAction(action.ActionType())
	logging.Debug().
		Str("report_id", s.id).
		Str("action", action.ActionType()).
		Bool("query_changed", changed).
		Uint64("generation", gen).
		Msg("Report action applied")

	s.editMu.Lock()
	fn := s.onApply
	s.editMu.Unlock()
	if fn != nil {
		fn(def)
	}
	return def, nil
}

// Refresh queries the current definition and commits the result unless the
// definition changed meanwhile, in which case it returns ErrStale. A query
// error is committed as StateError and returned.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.enabled = true
	gen := s.generation
	def := s.def.Clone()
	if s.result.State == StateIdle {
		s.result.State = StateLoading
	}
	s.mu.Unlock()

	now := s.opts.Now()
	res := s.run(ctx, def, now)
	res.Generation = gen
	res.UpdatedAt = now

	s.mu.Lock()
	if gen != s.generation || s.closed {
		s.mu.Unlock()
		metrics.RecordRefresh("stale")
		logging.Ctx(ctx).Debug().
			Str("report_id", s.id).
			Uint64("generation", gen).
			Msg("Discarding stale query result")
		return ErrStale
	}
	s.result = res
	switch {
	case res.Series == nil:
		s.visible = nil
		s.stroke = nil
	case s.visible == nil:
		s.visible = chart.NewVisibleSetFromSeries(res.Series, s.opts.VisibleCap)
	}
	// A refresh of the same definition keeps the acknowledged stroke unless
	// a boundary moved.
	if res.Series != nil && s.stroke != nil {
		s.stroke.Reset(res.Series.Series, def.Interval, def.Range, now)
	}
	s.mu.Unlock()

	metrics.RecordRefresh(string(res.State))
	if res.State == StateError {
		logging.CtxErr(ctx, res.Err).Str("report_id", s.id).Msg("Report query failed")
		return res.Err
	}
	return nil
}

// run executes the query family of def. It never touches session state.
func (s *Session) run(ctx context.Context, def models.ReportDefinition, now time.Time) Result {
	p := query.PayloadFrom(def, now)
	family := query.FamilyFor(def.ChartType)
	out := Result{Family: family}

	var err error
	switch family {
	case query.FamilyFunnel:
		out.Funnel, err = s.querier.Funnel(ctx, p)
		if err == nil && funnelEmpty(out.Funnel) {
			out.State = StateEmpty
		}
	case query.FamilyConversion:
		out.Conversion, err = s.querier.Conversion(ctx, p)
		if err == nil && (out.Conversion == nil || len(out.Conversion.Current) == 0) {
			out.State = StateEmpty
		}
	case query.FamilyRetention:
		var cohorts []models.RetentionCohort
		cohorts, err = s.querier.Retention(ctx, p)
		if err == nil {
			if len(cohorts) == 0 {
				out.State = StateEmpty
			} else {
				out.Retention = chart.RetentionRows(cohorts)
			}
		}
	case query.FamilySankey:
		out.Sankey, err = s.querier.Sankey(ctx, p)
		if err == nil && (out.Sankey == nil || len(out.Sankey.Nodes) == 0) {
			out.State = StateEmpty
		}
	default:
		out.Series, err = s.querier.Query(ctx, p)
		if err == nil && out.Series.Empty() {
			out.State = StateEmpty
		}
	}

	switch {
	case err != nil:
		return Result{State: StateError, Family: family, Err: fmt.Errorf("%s query: %w", family, err)}
	case out.State == StateEmpty:
		return Result{State: StateEmpty, Family: family}
	}
	out.State = StateSuccess
	return out
}

func funnelEmpty(f *models.FunnelComparison) bool {
	if f == nil {
		return true
	}
	for _, r := range f.Current {
		if r.TotalSessions > 0 {
			return false
		}
	}
	return true
}

// ToggleSerie flips the visibility of a serie and returns the visible ids.
// It is a no-op unless a series result is committed.
func (s *Session) ToggleSerie(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result.Series == nil {
		return []string{}
	}
	if s.visible == nil {
		s.visible = chart.NewVisibleSetFromSeries(s.result.Series, s.opts.VisibleCap)
	}
	s.visible.Toggle(id)
	return s.visible.IDs()
}

// VisibleIDs returns the ids of the visible series, sorted.
func (s *Session) VisibleIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.visible == nil {
		return []string{}
	}
	return s.visible.IDs()
}

// Close stops pending debounced edits. Later calls return ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.editMu.Lock()
	for _, d := range s.edits {
		d.Stop()
	}
	s.edits = map[string]*debounce.Debouncer[edit]{}
	s.editMu.Unlock()

	metrics.TrackSession(false)
}
