// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package controller coordinates configuration, the BigQuery connection and the search and
// analytics services behind the dashboard.
//
// Services are created lazily, only once BigQuery answers a ping, and then reused. Every
// operation reports failure through its result value rather than an error.
package controller
