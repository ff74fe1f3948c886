// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordReportAction(t *testing.T) {
	before := testutil.ToFloat64(ReportActions.WithLabelValues("setChartType"))
	RecordReportAction("setChartType")
	RecordReportAction("setChartType")
	if got := testutil.ToFloat64(ReportActions.WithLabelValues("setChartType")) - before; got != 2 {
		t.Errorf("Expected 2 actions recorded, got %v", got)
	}
}

func TestRecordQuery(t *testing.T) {
	tests := []struct {
		name       string
		family     string
		err        error
		wantErrors float64
	}{
		{"success", "funnel", nil, 0},
		{"failure", "retention", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(QueryErrors.WithLabelValues(tt.family))
			RecordQuery(tt.family, 10*time.Millisecond, tt.err)
			if got := testutil.ToFloat64(QueryErrors.WithLabelValues(tt.family)) - before; got != tt.wantErrors {
				t.Errorf("Expected %v errors, got %v", tt.wantErrors, got)
			}
		})
	}
}

func TestRecordCache(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("query"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("query"))

	RecordCacheHit("query")
	RecordCacheMiss("query")
	RecordCacheMiss("query")
	SetCacheSize("query", 7)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("query")) - hits; got != 1 {
		t.Errorf("Expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("query")) - misses; got != 2 {
		t.Errorf("Expected 2 misses, got %v", got)
	}
	if got := testutil.ToFloat64(CacheSize.WithLabelValues("query")); got != 7 {
		t.Errorf("Expected size 7, got %v", got)
	}
}

func TestRecordBreakerTransition(t *testing.T) {
	tests := []struct {
		to   string
		want float64
	}{
		{"open", 2},
		{"half-open", 1},
		{"closed", 0},
	}

	for _, tt := range tests {
		t.Run(tt.to, func(t *testing.T) {
			RecordBreakerTransition("test-breaker", "closed", tt.to)
			if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-breaker")); got != tt.want {
				t.Errorf("Expected state %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTrackGauges(t *testing.T) {
	before := testutil.ToFloat64(ReportSessions)
	TrackSession(true)
	TrackSession(true)
	TrackSession(false)
	if got := testutil.ToFloat64(ReportSessions) - before; got != 1 {
		t.Errorf("Expected 1 open session, got %v", got)
	}

	active := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != active {
		t.Errorf("Expected active requests to return to %v, got %v", active, got)
	}
}

func TestRecordTransformAndRefresh(t *testing.T) {
	transforms := testutil.ToFloat64(ChartTransforms.WithLabelValues("linear"))
	stale := testutil.ToFloat64(ReportRefreshes.WithLabelValues("stale"))

	RecordTransform("linear", time.Millisecond)
	RecordRefresh("stale")

	if got := testutil.ToFloat64(ChartTransforms.WithLabelValues("linear")) - transforms; got != 1 {
		t.Errorf("Expected 1 transform, got %v", got)
	}
	if got := testutil.ToFloat64(ReportRefreshes.WithLabelValues("stale")) - stale; got != 1 {
		t.Errorf("Expected 1 stale refresh, got %v", got)
	}
}
