// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"

	"github.com/go-a2a/patent-analyst/types"
	"github.com/go-a2a/patent-analyst/visualization"
	"github.com/go-a2a/patent-analyst/warehouse"
)

const visualizationUnavailable = "Visualization service not available"

func unavailable[T any]() types.Result[T] {
	return types.Fail[T](types.KindNotConnected, visualizationUnavailable)
}

// ComponentOutliers returns the patents with an anomalously high component count.
func (c *Controller) ComponentOutliers(ctx context.Context) types.Result[[]warehouse.Row] {
	svc := c.visualizationService(ctx)
	if svc == nil {
		return unavailable[[]warehouse.Row]()
	}
	return svc.DetectComponentOutliers(ctx)
}

// ComponentDistribution returns the component count of every patent.
func (c *Controller) ComponentDistribution(ctx context.Context) types.Result[[]warehouse.Row] {
	svc := c.visualizationService(ctx)
	if svc == nil {
		return unavailable[[]warehouse.Row]()
	}
	return svc.ComponentDistribution(ctx)
}

// PortfolioAnalysis returns the per-applicant portfolio metrics.
func (c *Controller) PortfolioAnalysis(ctx context.Context) types.Result[[]warehouse.Row] {
	svc := c.visualizationService(ctx)
	if svc == nil {
		return unavailable[[]warehouse.Row]()
	}
	return svc.PortfolioAnalysis(ctx)
}

// FormattedComponentOutliers returns the outlier table rows.
func (c *Controller) FormattedComponentOutliers(ctx context.Context) types.Result[[]visualization.OutlierRow] {
	res := c.ComponentOutliers(ctx)
	if !res.Success {
		return types.Fail[[]visualization.OutlierRow](res.ErrorKind, res.Message)
	}
	return types.OK(res.Message, visualization.FormatOutliers(res.Data, c.link))
}

// DistributionChart returns the component count histogram with outlier markers.
// Markers are omitted when outlier detection fails.
func (c *Controller) DistributionChart(ctx context.Context) types.Result[*visualization.DistributionChart] {
	res := c.ComponentDistribution(ctx)
	if !res.Success {
		return types.Fail[*visualization.DistributionChart](res.ErrorKind, res.Message)
	}

	var outliers []warehouse.Row
	if o := c.ComponentOutliers(ctx); o.Success {
		outliers = o.Data
	}
	return types.OK(res.Message, visualization.FormatDistribution(res.Data, outliers))
}

// PortfolioChart returns the applicant bubble chart.
func (c *Controller) PortfolioChart(ctx context.Context) types.Result[*visualization.PortfolioChart] {
	res := c.PortfolioAnalysis(ctx)
	if !res.Success {
		return types.Fail[*visualization.PortfolioChart](res.ErrorKind, res.Message)
	}
	return types.OK(res.Message, visualization.FormatPortfolio(res.Data))
}
