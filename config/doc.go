// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the dashboard configuration from defaults, an optional config file,
// the environment and a TOML secrets file.
//
// The environment names of the original deployment (GOOGLE_CLOUD_PROJECT_ID, GCP_SA_KEY,
// BQ_LOCATION, BQ_DATASET_ID, BQ_TABLE_PATENT_KNOWLEDGE_GRAPH, APP_TITLE, DEBUG_MODE,
// APP_ENV) are honoured; every other key is read from PATENT_<SECTION>_<KEY>.
package config
