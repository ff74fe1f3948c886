// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

// Package debounce provides a trailing-edge debouncer for user-typed input.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays calls to fn until no Trigger has happened for window.
// Only the last triggered value is delivered. It is safe for concurrent use
// and fn always runs without the internal lock held.
type Debouncer[T any] struct {
	mu      sync.Mutex
	window  time.Duration
	fn      func(T)
	timer   *time.Timer
	value   T
	pending bool
	seq     uint64
	stopped bool
}

// New returns a debouncer delivering values to fn.
func New[T any](window time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{window: window, fn: fn}
}

// Trigger schedules fn(v), replacing any pending value and restarting the window.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.value = v
	d.pending = true
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.fire(seq) })
}

// fire delivers the pending value if no later Trigger, Flush or Cancel
// superseded the timer that called it.
func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	if d.stopped || !d.pending || seq != d.seq {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.fn(v)
}

// Flush runs a pending call immediately. It reports whether one was pending.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	v := d.value
	d.clearLocked()
	d.mu.Unlock()

	d.fn(v)
	return true
}

// Cancel drops a pending call. It reports whether one was pending.
func (d *Debouncer[T]) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	was := d.pending
	d.clearLocked()
	return was
}

// Stop cancels any pending call and turns later Triggers into no-ops.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearLocked()
	d.stopped = true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) clearLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	var zero T
	d.value = zero
	d.pending = false
	d.seq++
}
