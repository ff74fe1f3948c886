// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package query

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reportkit/internal/config"
	"github.com/tomtom215/reportkit/internal/logging"
	"github.com/tomtom215/reportkit/internal/metrics"
	"github.com/tomtom215/reportkit/internal/models"
)

// BreakerName labels the query circuit breaker in logs and metrics.
const BreakerName = "report-query"

// BreakerQuerier stops calling a failing backend until it recovers.
// Invalid payloads do not count as failures.
//
// The breaker uses real time for its interval and timeout. Tests drive it
// through consecutive failures rather than waiting.
type BreakerQuerier struct {
	next Querier
	cb   *gobreaker.CircuitBreaker[any]
}

var _ Querier = (*BreakerQuerier)(nil)

// NewBreakerQuerier wraps next with a circuit breaker configured by cfg.
// The breaker opens after cfg.FailureThreshold consecutive failures.
func NewBreakerQuerier(next Querier, cfg config.BreakerConfig) *BreakerQuerier {
	metrics.CircuitBreakerState.WithLabelValues(BreakerName).Set(0) // 0 = closed

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidPayload) || errors.Is(err, ErrJSONUnavailable) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.RecordBreakerTransition(name, from.String(), to.String())
		},
	})
	return &BreakerQuerier{next: next, cb: cb}
}

// State returns the current breaker state.
func (b *BreakerQuerier) State() gobreaker.State {
	return b.cb.State()
}

func guarded[T any](ctx context.Context, b *BreakerQuerier, p Payload, run func(context.Context, Payload) (T, error)) (T, error) {
	var zero T
	v, err := b.cb.Execute(func() (any, error) {
		return run(ctx, p)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordBreakerRequest(BreakerName, "rejected")
			return zero, fmt.Errorf("%w: %v", ErrQueryUnavailable, err)
		}
		metrics.RecordBreakerRequest(BreakerName, "failure")
		return zero, err
	}
	metrics.RecordBreakerRequest(BreakerName, "success")

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", v)
	}
	return typed, nil
}

func (b *BreakerQuerier) Query(ctx context.Context, p Payload) (*models.AggregationResult, error) {
	return guarded(ctx, b, p, b.next.Query)
}

func (b *BreakerQuerier) Funnel(ctx context.Context, p Payload) (*models.FunnelComparison, error) {
	return guarded(ctx, b, p, b.next.Funnel)
}

func (b *BreakerQuerier) Conversion(ctx context.Context, p Payload) (*models.ConversionResult, error) {
	return guarded(ctx, b, p, b.next.Conversion)
}

func (b *BreakerQuerier) Retention(ctx context.Context, p Payload) ([]models.RetentionCohort, error) {
	return guarded(ctx, b, p, b.next.Retention)
}

func (b *BreakerQuerier) Sankey(ctx context.Context, p Payload) (*models.SankeyResult, error) {
	return guarded(ctx, b, p, b.next.Sankey)
}
