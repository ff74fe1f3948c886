// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package query

import (
	"context"

	"github.com/tomtom215/reportkit/internal/cache"
	"github.com/tomtom215/reportkit/internal/config"
	"github.com/tomtom215/reportkit/internal/metrics"
	"github.com/tomtom215/reportkit/internal/models"
)

// CachedQuerier serves repeated payloads from an LRU cache. Only
// successful results are stored. Live ranges always reach next, since their
// bounds stay fixed while the last bucket keeps filling.
type CachedQuerier struct {
	next  Querier
	cache *cache.LRU[any]
}

var _ Querier = (*CachedQuerier)(nil)

// NewCachedQuerier wraps next with a cache sized by cfg.
func NewCachedQuerier(next Querier, cfg config.CacheConfig) *CachedQuerier {
	return &CachedQuerier{next: next, cache: cache.NewLRU[any](cfg.Capacity, cfg.TTL)}
}

// Cache exposes the underlying cache for stats and tests.
func (c *CachedQuerier) Cache() *cache.LRU[any] {
	return c.cache
}

// Invalidate drops every cached result, e.g. after new events are written.
func (c *CachedQuerier) Invalidate() {
	c.cache.Clear()
	metrics.SetCacheSize("query", 0)
}

func cached[T any](ctx context.Context, c *CachedQuerier, family string, p Payload, run func(context.Context, Payload) (T, error)) (T, error) {
	if p.Range.Live() {
		metrics.RecordCacheBypass(family)
		return run(ctx, p)
	}

	key := family + ":" + Key(p)
	if v, ok := c.cache.Get(key); ok {
		if typed, ok := v.(T); ok {
			metrics.RecordCacheHit(family)
			return typed, nil
		}
	}
	metrics.RecordCacheMiss(family)

	v, err := run(ctx, p)
	if err != nil {
		return v, err
	}
	c.cache.Add(key, v)
	metrics.SetCacheSize("query", c.cache.Len())
	return v, nil
}

func (c *CachedQuerier) Query(ctx context.Context, p Payload) (*models.AggregationResult, error) {
	return cached(ctx, c, FamilySeries, p, c.next.Query)
}

func (c *CachedQuerier) Funnel(ctx context.Context, p Payload) (*models.FunnelComparison, error) {
	return cached(ctx, c, FamilyFunnel, p, c.next.Funnel)
}

func (c *CachedQuerier) Conversion(ctx context.Context, p Payload) (*models.ConversionResult, error) {
	return cached(ctx, c, FamilyConversion, p, c.next.Conversion)
}

func (c *CachedQuerier) Retention(ctx context.Context, p Payload) ([]models.RetentionCohort, error) {
	return cached(ctx, c, FamilyRetention, p, c.next.Retention)
}

func (c *CachedQuerier) Sankey(ctx context.Context, p Payload) (*models.SankeyResult, error) {
	return cached(ctx, c, FamilySankey, p, c.next.Sankey)
}
