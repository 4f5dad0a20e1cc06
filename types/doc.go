// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package types defines the values exchanged between the services, the controller and the
// dashboard.
//
// # Results
//
// Operations behind the service boundary return a [Result] rather than an error. A failed
// Result carries a user-facing message and an [ErrorKind]:
//
//	res := svc.PortfolioAnalysis(ctx)
//	if !res.Success {
//		switch res.ErrorKind {
//		case types.KindClientUnavailable:
//			// show the disconnected view
//		}
//	}
//
// # Search payloads
//
// [SearchRequest], [SearchResponse] and [SearchResult] describe a component search in display
// form; cosine distances become percentages through [Similarity].
package types
