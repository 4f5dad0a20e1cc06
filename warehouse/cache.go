// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package warehouse

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dgraph-io/ristretto/v2"
)

// maxCachedRows bounds the total number of rows held by a [CachingQuerier].
const maxCachedRows = 200_000

// CachingQuerier caches successful results of another [Querier] for a fixed TTL.
//
// The corpus behind the dashboard is written once by the pipeline, so identical statements
// return identical rows until it is rebuilt. [PingSQL] is never cached, and every caller
// receives its own copy of the cached rows.
type CachingQuerier struct {
	next  Querier
	cache *ristretto.Cache[string, []Row]
	ttl   time.Duration
}

var _ Querier = (*CachingQuerier)(nil)

// NewCachingQuerier returns a [CachingQuerier] in front of next.
func NewCachingQuerier(next Querier, ttl time.Duration) (*CachingQuerier, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []Row]{
		NumCounters: 10 * 10_000,
		MaxCost:     maxCachedRows,
		BufferItems: 64,

		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}

	return &CachingQuerier{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}, nil
}

// Query implements [Querier].
func (c *CachingQuerier) Query(ctx context.Context, sql string, params ...bigquery.QueryParameter) ([]Row, error) {
	if sql == PingSQL {
		return c.next.Query(ctx, sql, params...)
	}

	key := cacheKey(sql, params)
	if rows, ok := c.cache.Get(key); ok {
		return cloneRows(rows), nil
	}

	rows, err := c.next.Query(ctx, sql, params...)
	if err != nil {
		return nil, err
	}

	cost := int64(len(rows))
	if cost == 0 {
		cost = 1
	}
	c.cache.SetWithTTL(key, cloneRows(rows), cost, c.ttl)
	c.cache.Wait()

	return rows, nil
}

// Close releases the cache. The wrapped querier stays open; it belongs to whoever created it.
func (c *CachingQuerier) Close() error {
	c.cache.Close()
	return nil
}

// cloneRows copies the row slice and every row map. Nested values are shared.
func cloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = maps.Clone(r)
	}
	return out
}

func cacheKey(sql string, params []bigquery.QueryParameter) string {
	var sb strings.Builder
	sb.WriteString(sql)
	for _, p := range params {
		fmt.Fprintf(&sb, "\x00%s=%#v", p.Name, p.Value)
	}
	return sb.String()
}
