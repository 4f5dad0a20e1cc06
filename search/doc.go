// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package search implements semantic search over patent components.
//
// Queries are embedded inside BigQuery with ML.GENERATE_EMBEDDING and matched against a
// VECTOR_SEARCH index using cosine distance. User text only ever reaches BigQuery as a
// named query parameter.
//
// An optional [Classifier] rejects non-technical queries before any search runs.
package search
