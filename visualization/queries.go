// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package visualization

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/go-a2a/patent-analyst/config"
)

// Tables names the BigQuery tables read by the analytics queries.
type Tables struct {
	ProjectID      string
	DatasetID      string
	KnowledgeGraph string
	TextExtraction string
}

// TablesFrom returns the [Tables] configured in cfg.
func TablesFrom(cfg *config.Config) Tables {
	return Tables{
		ProjectID:      cfg.GCP.ProjectID,
		DatasetID:      cfg.BigQuery.DatasetID,
		KnowledgeGraph: cfg.BigQuery.KnowledgeGraphTable,
		TextExtraction: cfg.BigQuery.TextExtractionTable,
	}
}

func (t Tables) path(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", t.ProjectID, t.DatasetID, name)
}

// OutlierSQL selects patents whose component count exceeds the mean by more than three
// standard deviations.
func (t Tables) OutlierSQL() string {
	return heredoc.Docf(`
		WITH component_stats AS (
		  SELECT
		    uri,
		    ARRAY_LENGTH(components) AS num_components,
		    AVG(ARRAY_LENGTH(components)) OVER() AS avg_components,
		    STDDEV(ARRAY_LENGTH(components)) OVER() AS stddev_components
		  FROM %s
		)
		SELECT uri, num_components
		FROM component_stats
		WHERE num_components > avg_components + (3 * stddev_components)`,
		t.path(t.KnowledgeGraph))
}

// DistributionSQL selects the component count of every patent that has components.
func (t Tables) DistributionSQL() string {
	return heredoc.Docf(`
		SELECT ARRAY_LENGTH(components) AS num_components
		FROM %s
		WHERE ARRAY_LENGTH(components) > 0`,
		t.path(t.KnowledgeGraph))
}

// PortfolioSQL aggregates innovation breadth and connection density per applicant.
// Applicants with a single patent and patents without connections are excluded.
func (t Tables) PortfolioSQL() string {
	return heredoc.Docf(`
		WITH patent_connection_stats AS (
		  SELECT
		    t1.uri,
		    t1.applican,
		    t2.invention_domain,
		    (
		      SELECT SUM(ARRAY_LENGTH(c.connected_to))
		      FROM UNNEST(t2.components) AS c
		      WHERE c.connected_to IS NOT NULL
		    ) AS total_connections
		  FROM %s AS t1
		  JOIN %s AS t2 ON t1.uri = t2.uri
		  WHERE t1.applican IS NOT NULL AND t2.invention_domain IS NOT NULL
		)
		SELECT
		  applican,
		  COUNT(DISTINCT invention_domain) AS innovation_breadth,
		  ROUND(AVG(total_connections), 2) AS average_connection_density,
		  COUNT(uri) AS total_patents
		FROM patent_connection_stats
		WHERE total_connections > 0
		GROUP BY applican
		HAVING COUNT(uri) > 1
		ORDER BY total_patents DESC`,
		t.path(t.TextExtraction), t.path(t.KnowledgeGraph))
}
