// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashboard drives the two dashboard tabs.
//
// The [Engine] decides what to show from the visitor's [session.State] and fetches the data
// from a [Backend]; a [Renderer] turns the resulting views into HTML or terminal output.
// The home tab is either an overview with the search box or the results of the active
// search. The data tab shows the corpus analytics, loaded concurrently.
package dashboard
