// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"

	"github.com/go-a2a/patent-analyst/pkg/logging"
	"github.com/go-a2a/patent-analyst/types"
	"github.com/go-a2a/patent-analyst/warehouse"
)

// Counts shown when BigQuery cannot be queried.
const (
	defaultPatentCount    = 403
	defaultComponentCount = 1000
)

// ConnectionStatus validates the configuration and pings BigQuery.
func (c *Controller) ConnectionStatus(ctx context.Context) types.ConnectionStatus {
	var status types.ConnectionStatus

	if err := c.cfg.Validate(); err != nil {
		status.EnvMessage = err.Error()
	} else {
		status.EnvValid = true
		status.EnvMessage = "Environment configuration is valid"
	}

	q, err := c.provider.Querier(ctx)
	switch {
	case err != nil || q == nil:
		status.GCPMessage = "Failed to authenticate with GCP"
	default:
		if err := warehouse.Ping(ctx, q); err != nil {
			status.GCPMessage = fmt.Sprintf("GCP connection failed: %v", err)
		} else {
			status.GCPConnected = true
			status.GCPMessage = "GCP connection successful"
		}
	}
	return status
}

func (c *Controller) statsSQL() string {
	return heredoc.Docf(`
		SELECT
		  COUNT(DISTINCT patent_id) AS patent_count,
		  COUNT(*) AS component_count
		FROM %s`,
		fmt.Sprintf("`%s.%s.%s`", c.cfg.GCP.ProjectID, c.cfg.BigQuery.DatasetID, c.cfg.BigQuery.KnowledgeGraphTable))
}

// DefaultStats returns the stats shown while BigQuery is unavailable.
func DefaultStats() types.AppStats {
	return types.AppStats{
		PatentCount:      humanize.Comma(defaultPatentCount),
		ComponentCount:   humanize.Comma(defaultComponentCount),
		ConnectionStatus: "Using default values",
	}
}

// AppStats returns the corpus counts, or [DefaultStats] when they cannot be queried.
func (c *Controller) AppStats(ctx context.Context) types.AppStats {
	q, err := c.provider.Querier(ctx)
	if err != nil || q == nil {
		return DefaultStats()
	}

	rows, err := c.analyticsQuerier(ctx, q).Query(ctx, c.statsSQL())
	if err != nil || len(rows) == 0 {
		if err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "stats query failed", slog.Any("error", err))
		}
		return DefaultStats()
	}

	return types.AppStats{
		PatentCount:      humanize.Comma(rows[0].Int("patent_count")),
		ComponentCount:   humanize.Comma(rows[0].Int("component_count")),
		ConnectionStatus: "Connected to BigQuery",
	}
}
