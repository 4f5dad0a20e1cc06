// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package session holds the dashboard state of each visitor.
//
// The dashboard is either in overview mode or in search mode for a query. [State] exposes
// that mode independent of where it lives: [MemoryState] keeps it in process, while
// [StoreState] persists a [Record] in a [Store] keyed by a session ID carried in a cookie.
//
// Two stores are provided:
//
//   - [MemoryStore]: in-process, records are deep-copied in and out
//   - [RedisStore]: Redis with TTL refresh on read and optimistic locking on update
//
// Every successful mode change invokes the state's [ChangeFunc], if one was given.
package session
