// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package warehouse provides the BigQuery access used by the search and visualization services.
//
// Services depend on the small [Querier] interface rather than on the BigQuery client, so a
// [Fake] can stand in for tests and a [CachingQuerier] can be layered in front of the real
// [Client]. A [Provider] hands out queriers: [CachedProvider] builds the client once per
// process, [StaticProvider] returns an injected one.
package warehouse
