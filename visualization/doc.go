// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package visualization runs the corpus-wide analytics queries behind the data tab and
// shapes their rows into table and chart payloads.
package visualization
