// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"github.com/go-a2a/patent-analyst/types"
	"github.com/go-a2a/patent-analyst/visualization"
)

// Mode is the mode of the home tab.
type Mode string

const (
	ModeOverview Mode = "overview"
	ModeSearch   Mode = "search"
)

// SearchPlaceholder is the hint shown in an empty search box.
const SearchPlaceholder = "e.g., 'wireless communication modules' or 'battery management systems'"

// HomeView is the home tab.
type HomeView struct {
	Title  string
	Mode   Mode
	Query  string
	Input  string
	Stats  types.AppStats
	Status types.ConnectionStatus

	// Search is set in search mode.
	Search *SearchView
}

// SearchView is the outcome of the active search.
type SearchView struct {
	Success bool
	Message string
	Results []types.SearchResult
}

// NotConnected reports whether the failure was caused by a missing BigQuery connection.
func (v *SearchView) NotConnected() bool {
	return !v.Success && containsFold(v.Message, "not connected")
}

// Section is one independently loaded part of the data tab.
type Section[T any] struct {
	Success bool
	Message string
	Data    T
}

func sectionOf[T any](r types.Result[T]) Section[T] {
	return Section[T]{Success: r.Success, Message: r.Message, Data: r.Data}
}

// DataView is the data tab.
type DataView struct {
	Title     string
	Connected bool

	// Message explains why the tab is disconnected.
	Message string

	Portfolio    Section[*visualization.PortfolioChart]
	Distribution Section[*visualization.DistributionChart]
	Outliers     Section[[]visualization.OutlierRow]
}
