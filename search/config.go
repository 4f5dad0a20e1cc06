// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"github.com/go-a2a/patent-analyst/config"
)

// Config configures the semantic search service.
type Config struct {
	ProjectID           string
	DatasetID           string
	EmbeddingModel      string
	ClassificationModel string
	SearchIndex         string

	// DistanceThreshold is the maximum cosine distance of a hit.
	DistanceThreshold float64

	// TopK is the number of neighbours fetched from the index.
	TopK int

	// PatentsLimit and PerURILimit bound the grouped search.
	PatentsLimit int
	PerURILimit  int

	// Classify rejects non-technical queries before searching.
	Classify bool
}

// DefaultConfig returns the search defaults for projectID.
func DefaultConfig(projectID string) Config {
	return Config{
		ProjectID:           projectID,
		DatasetID:           "patent_analysis",
		EmbeddingModel:      "embedding_model",
		ClassificationModel: "gemini_vision_analyzer",
		SearchIndex:         "component_search_index",
		DistanceThreshold:   0.8,
		TopK:                70,
		PatentsLimit:        20,
		PerURILimit:         5,
	}
}

// ConfigFrom derives a search [Config] from the application configuration.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		ProjectID:           cfg.GCP.ProjectID,
		DatasetID:           cfg.BigQuery.DatasetID,
		EmbeddingModel:      cfg.BigQuery.EmbeddingModel,
		ClassificationModel: cfg.BigQuery.ClassificationModel,
		SearchIndex:         cfg.BigQuery.SearchIndex,
		DistanceThreshold:   cfg.Search.DistanceThreshold,
		TopK:                cfg.Search.TopK,
		PatentsLimit:        cfg.Search.PatentsLimit,
		PerURILimit:         cfg.Search.PerURILimit,
		Classify:            cfg.Search.Classify,
	}
}
