// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"math"
	"strings"
)

// SearchRequest is a search submitted by the dashboard.
type SearchRequest struct {
	Query string `json:"query"`
}

// NewSearchRequest returns a [SearchRequest] with surrounding whitespace stripped from query.
func NewSearchRequest(query string) SearchRequest {
	return SearchRequest{Query: strings.TrimSpace(query)}
}

// SearchResult is a single component hit in display form.
type SearchResult struct {
	PatentURI  string `json:"patent_uri"`
	Component  string `json:"component"`
	Function   string `json:"function"`
	Similarity int    `json:"similarity"`
}

// SearchResponse is returned by the controller for a [SearchRequest].
type SearchResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Results []SearchResult `json:"results"`
	Query   string         `json:"query"`
}

// PatentHit is one component of a grouped patent match.
type PatentHit struct {
	Component  string `json:"component"`
	Function   string `json:"function"`
	Similarity int    `json:"similarity"`
}

// PatentMatch is one patent of a grouped search, with its best-matching components.
type PatentMatch struct {
	PatentURI      string      `json:"patent_uri"`
	BestSimilarity int         `json:"best_similarity"`
	HitCount       int64       `json:"hit_count"`
	TopComponents  []PatentHit `json:"top_components"`
}

// ConnectionStatus describes configuration validity and BigQuery reachability.
type ConnectionStatus struct {
	EnvValid     bool   `json:"env_valid"`
	EnvMessage   string `json:"env_message"`
	GCPConnected bool   `json:"gcp_connected"`
	GCPMessage   string `json:"gcp_message"`
}

// AppStats holds the headline corpus counts, already formatted for display.
type AppStats struct {
	PatentCount      string `json:"patent_count"`
	ComponentCount   string `json:"component_count"`
	ConnectionStatus string `json:"connection_status"`
}

// Similarity converts a cosine distance into a rounded percentage.
func Similarity(distance float64) int {
	return int(math.Round((1 - distance) * 100))
}
