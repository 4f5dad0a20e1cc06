// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the dashboard and its JSON API over HTTP.
//
// Visitor state lives in a [session.Store] keyed by a cookie. Form posts follow the
// post/redirect/get pattern, so a browser reload never repeats a search.
package server
