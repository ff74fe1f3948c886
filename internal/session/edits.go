// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package session

import (
	"errors"
	"fmt"

	"github.com/tomtom215/reportkit/internal/debounce"
	"github.com/tomtom215/reportkit/internal/logging"
	"github.com/tomtom215/reportkit/internal/models"
	"github.com/tomtom215/reportkit/internal/report"
)

// ErrUnknownItem is returned by edits naming a series item the definition
// does not contain.
var ErrUnknownItem = errors.New("unknown series item")

type editField int

const (
	editFormula editField = iota
	editDisplayName
)

// edit is one debounced field change of a series item.
type edit struct {
	itemID string
	field  editField
	value  string
}

// SetFormula schedules a formula text change for the formula item with id.
// Rapid edits collapse into one ChangeEvent after the debounce window.
func (s *Session) SetFormula(id, formula string) error {
	item, err := s.item(id)
	if err != nil {
		return err
	}
	if _, ok := item.(models.FormulaItem); !ok {
		return fmt.Errorf("%w: %s is not a formula", ErrUnknownItem, id)
	}
	s.schedule(edit{itemID: id, field: editFormula, value: formula})
	return nil
}

// SetDisplayName schedules a display name change for the item with id.
func (s *Session) SetDisplayName(id, name string) error {
	if _, err := s.item(id); err != nil {
		return err
	}
	s.schedule(edit{itemID: id, field: editDisplayName, value: name})
	return nil
}

// FlushEdits applies every pending debounced edit now. It returns the
// number of edits applied.
func (s *Session) FlushEdits() int {
	s.editMu.Lock()
	pending := make([]*debounce.Debouncer[edit], 0, len(s.edits))
	for _, d := range s.edits {
		pending = append(pending, d)
	}
	s.editMu.Unlock()

	n := 0
	for _, d := range pending {
		if d.Flush() {
			n++
		}
	}
	return n
}

// PendingEdits reports whether any debounced edit is waiting.
func (s *Session) PendingEdits() bool {
	s.editMu.Lock()
	defer s.editMu.Unlock()
	for _, d := range s.edits {
		if d.Pending() {
			return true
		}
	}
	return false
}

func (s *Session) item(id string) (models.SeriesItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	idx := s.def.Series.IndexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	return s.def.Series[idx], nil
}

// schedule triggers the debouncer of the edited item and field. Each
// field debounces on its own so a name edit never drops a formula edit.
func (s *Session) schedule(e edit) {
	key := fmt.Sprintf("%s:%d", e.itemID, e.field)
	s.editMu.Lock()
	d, ok := s.edits[key]
	if !ok {
		d = debounce.New(s.opts.DebounceWindow, s.applyEdit)
		s.edits[key] = d
	}
	s.editMu.Unlock()
	d.Trigger(e)
}

// applyEdit applies e to the item as it is when the window closes.
func (s *Session) applyEdit(e edit) {
	current, err := s.item(e.itemID)
	if err != nil {
		logging.Debug().Str("report_id", s.id).Err(err).Msg("Dropping debounced edit")
		return
	}

	switch v := current.(type) {
	case models.FormulaItem:
		if e.field == editFormula {
			v.Formula = e.value
		} else {
			v.DisplayName = e.value
		}
		current = v
	case models.EventItem:
		if e.field != editDisplayName {
			return
		}
		v.DisplayName = e.value
		current = v
	}

	if _, err := s.Dispatch(report.ChangeEvent{Item: current}); err != nil {
		logging.Debug().Str("report_id", s.id).Err(err).Msg("Dropping debounced edit")
	}
}
