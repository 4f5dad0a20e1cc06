// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging provides context-based structured logging utilities using Go's standard slog package.
//
// Loggers are stored in and retrieved from [context.Context] values so that a request-scoped
// logger (carrying, for example, the dashboard session ID) follows the call through the
// controller, the services and the BigQuery client.
//
// # Basic Usage
//
//	logger := logging.New(logging.Options{Level: "info", Format: "json"})
//	ctx := logging.NewContext(ctx, logger)
//
//	logging.FromContext(ctx).InfoContext(ctx, "search completed",
//		slog.String("query", query),
//		slog.Int("results", len(hits)),
//	)
//
// # Default Behavior
//
// When no logger is found in the context, FromContext returns [slog.Default], so logging
// always works even when no explicit logger is configured.
//
// # Thread Safety
//
// The logging package is safe for concurrent use.
package logging
