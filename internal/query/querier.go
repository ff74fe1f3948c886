// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package query

import (
	"context"
	"errors"

	"github.com/tomtom215/reportkit/internal/models"
)

// Query families, used as metric and cache labels.
const (
	FamilySeries     = "series"
	FamilyFunnel     = "funnel"
	FamilyConversion = "conversion"
	FamilyRetention  = "retention"
	FamilySankey     = "sankey"
)

var (
	// ErrQueryUnavailable is returned while the circuit breaker is open.
	ErrQueryUnavailable = errors.New("query backend unavailable")

	// ErrJSONUnavailable is returned for breakdowns and property filters
	// when the store cannot read event properties.
	ErrJSONUnavailable = errors.New("event properties are not queryable")

	// ErrInvalidPayload is returned for payloads the engine cannot run.
	ErrInvalidPayload = errors.New("invalid query payload")
)

// Querier computes report results. Implementations wrap each other:
// the DuckDB engine at the bottom, then the breaker, then the cache.
type Querier interface {
	Query(ctx context.Context, p Payload) (*models.AggregationResult, error)
	Funnel(ctx context.Context, p Payload) (*models.FunnelComparison, error)
	Conversion(ctx context.Context, p Payload) (*models.ConversionResult, error)
	Retention(ctx context.Context, p Payload) ([]models.RetentionCohort, error)
	Sankey(ctx context.Context, p Payload) (*models.SankeyResult, error)
}

// FamilyFor returns the query family a chart type is computed by.
func FamilyFor(t models.ChartType) string {
	switch t {
	case models.ChartFunnel:
		return FamilyFunnel
	case models.ChartConversion:
		return FamilyConversion
	case models.ChartRetention:
		return FamilyRetention
	case models.ChartSankey:
		return FamilySankey
	}
	return FamilySeries
}
