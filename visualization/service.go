// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package visualization

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-a2a/patent-analyst/internal/observability"
	"github.com/go-a2a/patent-analyst/pkg/logging"
	"github.com/go-a2a/patent-analyst/types"
	"github.com/go-a2a/patent-analyst/warehouse"
)

// Rows is the payload of analytics results.
type Rows = types.Result[[]warehouse.Row]

// Service runs the analytics queries.
type Service struct {
	client warehouse.Querier
	tables Tables
}

// NewService returns a [Service]. client may be nil, in which case every operation
// reports the client as unavailable.
func NewService(client warehouse.Querier, tables Tables) *Service {
	return &Service{
		client: client,
		tables: tables,
	}
}

func (s *Service) execute(ctx context.Context, sql, operation string) Rows {
	if s.client == nil {
		return types.Fail[[]warehouse.Row](types.KindClientUnavailable, warehouse.ErrNoClient.Error())
	}

	ctx, span := observability.StartSpan(ctx, "visualization."+operation)
	rows, err := s.client.Query(ctx, sql)
	observability.EndSpan(span, err)
	if err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "analytics query failed", slog.String("operation", operation), slog.Any("error", err))
		return types.Fail[[]warehouse.Row](types.KindQueryFailed, fmt.Sprintf("%s failed: %v", operation, err))
	}

	if len(rows) == 0 {
		return types.OK(fmt.Sprintf("No data found for %s", operation), rows)
	}
	return types.OK(fmt.Sprintf("Retrieved %s data for %d records", operation, len(rows)), rows)
}

// DetectComponentOutliers returns the patents with an anomalously high component count.
func (s *Service) DetectComponentOutliers(ctx context.Context) Rows {
	res := s.execute(ctx, s.tables.OutlierSQL(), "outlier detection")
	if !res.Success {
		return res
	}
	if len(res.Data) == 0 {
		res.Message = "No significant outliers found in component counts."
	} else {
		res.Message = fmt.Sprintf("Found %d patents with unusually high number of components.", len(res.Data))
	}
	return res
}

// ComponentDistribution returns the component count of every patent.
func (s *Service) ComponentDistribution(ctx context.Context) Rows {
	res := s.execute(ctx, s.tables.DistributionSQL(), "component distribution")
	if res.Success && len(res.Data) > 0 {
		res.Message = fmt.Sprintf("Retrieved component distribution for %d patents.", len(res.Data))
	}
	return res
}

// PortfolioAnalysis returns the per-applicant portfolio metrics.
func (s *Service) PortfolioAnalysis(ctx context.Context) Rows {
	res := s.execute(ctx, s.tables.PortfolioSQL(), "portfolio analysis")
	if res.Success && len(res.Data) > 0 {
		res.Message = fmt.Sprintf("Retrieved portfolio analysis for %d applicants.", len(res.Data))
	}
	return res
}
