// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-a2a/patent-analyst/pkg/logging"
	"github.com/go-a2a/patent-analyst/search"
	"github.com/go-a2a/patent-analyst/types"
	"github.com/go-a2a/patent-analyst/visualization"
)

const searchUnavailable = "Semantic search service not available"

// unavailableResult reports why the search service could not be created.
func unavailableResult[T any](err error) types.Result[T] {
	kind := types.KindClientUnavailable
	if errors.Is(err, ErrNotConnected) {
		kind = types.KindNotConnected
	}
	return types.Fail[T](kind, searchUnavailable+": "+err.Error())
}

func toSearchResults(hits []search.Hit) []types.SearchResult {
	results := make([]types.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, types.SearchResult{
			PatentURI:  h.URI,
			Component:  h.ComponentName,
			Function:   h.ComponentFunction,
			Similarity: h.Similarity(),
		})
	}
	return results
}

// Search runs a semantic search. Identical concurrent searches share one BigQuery query.
func (c *Controller) Search(ctx context.Context, req types.SearchRequest) types.SearchResponse {
	resp := types.SearchResponse{Query: req.Query}

	svc, err := c.searchService(ctx)
	if err != nil {
		resp.Message = unavailableResult[[]search.Hit](err).Message
		return resp
	}

	v, _, shared := c.group.Do("search\x00"+req.Query, func() (any, error) {
		return svc.Run(context.WithoutCancel(ctx), req.Query), nil
	})
	if err := ctx.Err(); err != nil {
		resp.Message = fmt.Sprintf("Search failed: %v", err)
		return resp
	}
	if shared {
		logging.FromContext(ctx).DebugContext(ctx, "shared in-flight search", slog.String("query", req.Query))
	}

	res := v.(types.Result[[]search.Hit])
	resp.Success = res.Success
	resp.Message = res.Message
	if res.Success {
		resp.Results = toSearchResults(res.Data)
	}
	return resp
}

// SearchGrouped returns the patents matching query, best first.
func (c *Controller) SearchGrouped(ctx context.Context, query string) types.Result[[]types.PatentMatch] {
	svc, err := c.searchService(ctx)
	if err != nil {
		return unavailableResult[[]types.PatentMatch](err)
	}

	groups, err := svc.GroupedSearch(ctx, query)
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		return types.Fail[[]types.PatentMatch](types.KindInvalidInput, err.Error())
	case err != nil:
		return types.Fail[[]types.PatentMatch](types.KindQueryFailed, fmt.Sprintf("Grouped search failed: %v", err))
	}

	matches := make([]types.PatentMatch, 0, len(groups))
	for _, g := range groups {
		m := types.PatentMatch{
			PatentURI:      g.URI,
			BestSimilarity: types.Similarity(g.BestDistance),
			HitCount:       g.HitCount,
		}
		for _, h := range g.TopComponents {
			m.TopComponents = append(m.TopComponents, types.PatentHit{
				Component:  h.ComponentName,
				Function:   h.ComponentFunction,
				Similarity: h.Similarity(),
			})
		}
		matches = append(matches, m)
	}

	q := search.Sanitize(query)
	if len(matches) == 0 {
		return types.OK(fmt.Sprintf("No patents found for '%s'. Try a different query.", q), matches)
	}
	return types.OK(fmt.Sprintf("Found %d patents for '%s'.", len(matches), q), matches)
}

// PatentDetail returns every component of the patent at uri that matches query.
func (c *Controller) PatentDetail(ctx context.Context, query, uri string) types.Result[[]types.SearchResult] {
	svc, err := c.searchService(ctx)
	if err != nil {
		return unavailableResult[[]types.SearchResult](err)
	}

	hits, err := svc.ComponentsForURI(ctx, query, uri)
	switch {
	case errors.Is(err, search.ErrInvalidInput):
		return types.Fail[[]types.SearchResult](types.KindInvalidInput, err.Error())
	case err != nil:
		return types.Fail[[]types.SearchResult](types.KindQueryFailed, fmt.Sprintf("Detail fetch failed: %v", err))
	}

	return types.OK(fmt.Sprintf("Found %d matching components in %s.", len(hits), visualization.PatentID(uri)), toSearchResults(hits))
}
