// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/MakeNowJust/heredoc/v2"

	"github.com/go-a2a/patent-analyst/warehouse"
)

// Prompt text sent with user queries. User text is always bound as @query.
const (
	embeddingPrefix      = "Represent this technical patent component for semantic search: "
	classificationPrompt = "Is the following user query related to a technical, scientific, or engineering topic? Answer with only 'Yes' or 'No'. Query: "
)

// Statement is a SQL statement with its named parameters.
type Statement struct {
	SQL    string
	Params []bigquery.QueryParameter
}

func (c Config) path(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", c.ProjectID, c.DatasetID, name)
}

// searchResultsCTE embeds @query and runs VECTOR_SEARCH over the component index.
func (c Config) searchResultsCTE(topK int) string {
	return heredoc.Docf(`
		WITH search_results AS (
		  SELECT
		    base.uri, base.component_name, base.component_function, distance
		  FROM
		    VECTOR_SEARCH(
		      TABLE %s,
		      'combined_vector',
		      (
		        SELECT ml_generate_embedding_result
		        FROM ML.GENERATE_EMBEDDING(
		          MODEL %s,
		          (SELECT CONCAT(@embedding_prefix, @query) AS content)
		        )
		      ),
		      top_k => %d,
		      distance_type => 'COSINE'
		    )
		)`,
		c.path(c.SearchIndex), c.path(c.EmbeddingModel), topK)
}

func searchParams(query string, threshold float64, extra ...bigquery.QueryParameter) []bigquery.QueryParameter {
	params := []bigquery.QueryParameter{
		warehouse.Param("embedding_prefix", embeddingPrefix),
		warehouse.Param("query", query),
		warehouse.Param("distance_threshold", threshold),
	}
	return append(params, extra...)
}

// ClassificationStatement asks the classification model whether query is technical.
func (c Config) ClassificationStatement(query string) Statement {
	sql := heredoc.Docf(`
		SELECT ml_generate_text_llm_result
		FROM ML.GENERATE_TEXT(
		  MODEL %s,
		  (SELECT CONCAT(@prompt, @query) AS prompt),
		  STRUCT(
		    0.0 AS temperature,
		    TRUE AS flatten_json_output,
		    1024 AS max_output_tokens
		  )
		)`,
		c.path(c.ClassificationModel))

	return Statement{
		SQL: sql,
		Params: []bigquery.QueryParameter{
			warehouse.Param("prompt", classificationPrompt),
			warehouse.Param("query", query),
		},
	}
}

// VectorSearchStatement returns component hits closer than threshold.
func (c Config) VectorSearchStatement(query string, threshold float64, topK int) Statement {
	sql := c.searchResultsCTE(topK) + "\n" + heredoc.Doc(`
		SELECT uri, component_name, component_function, distance
		FROM search_results
		WHERE distance < @distance_threshold
		ORDER BY distance ASC`)

	return Statement{SQL: sql, Params: searchParams(query, threshold)}
}

// GroupedSearchStatement aggregates hits per patent, keeping the closest components of each.
func (c Config) GroupedSearchStatement(query string) Statement {
	sql := c.searchResultsCTE(c.TopK) + "\n" + heredoc.Docf(`
		SELECT
		  uri,
		  MIN(distance) AS best_distance,
		  COUNT(1) AS hit_count,
		  ARRAY_AGG(STRUCT(component_name, component_function, distance) ORDER BY distance ASC LIMIT %d) AS top_components
		FROM search_results
		WHERE distance < @distance_threshold
		GROUP BY uri
		ORDER BY best_distance ASC
		LIMIT %d`,
		c.PerURILimit, c.PatentsLimit)

	return Statement{SQL: sql, Params: searchParams(query, c.DistanceThreshold)}
}

// DetailStatement returns every hit of query inside the patent at uri.
func (c Config) DetailStatement(query, uri string) Statement {
	sql := c.searchResultsCTE(c.TopK) + "\n" + heredoc.Doc(`
		SELECT uri, component_name, component_function, distance
		FROM search_results
		WHERE distance < @distance_threshold AND uri = @uri
		ORDER BY distance ASC`)

	return Statement{
		SQL:    sql,
		Params: searchParams(query, c.DistanceThreshold, warehouse.Param("uri", uri)),
	}
}
