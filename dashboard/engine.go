// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/go-a2a/patent-analyst/pkg/logging"
	"github.com/go-a2a/patent-analyst/session"
	"github.com/go-a2a/patent-analyst/types"
	"github.com/go-a2a/patent-analyst/visualization"
)

// Backend provides the data shown by the dashboard.
type Backend interface {
	Search(ctx context.Context, req types.SearchRequest) types.SearchResponse
	ConnectionStatus(ctx context.Context) types.ConnectionStatus
	AppStats(ctx context.Context) types.AppStats
	PortfolioChart(ctx context.Context) types.Result[*visualization.PortfolioChart]
	DistributionChart(ctx context.Context) types.Result[*visualization.DistributionChart]
	FormattedComponentOutliers(ctx context.Context) types.Result[[]visualization.OutlierRow]
}

// Renderer writes dashboard views.
type Renderer interface {
	RenderHome(w io.Writer, v *HomeView) error
	RenderData(w io.Writer, v *DataView) error
}

// Action is what the visitor did on the home tab.
type Action struct {
	// Submitted is set when the search button was pressed.
	Submitted bool

	// Query is the content of the search box.
	Query string
}

// Engine coordinates the backend, the visitor state and the renderer.
type Engine struct {
	backend  Backend
	state    session.State
	renderer Renderer
	title    string
}

// NewEngine returns an [Engine].
func NewEngine(backend Backend, state session.State, renderer Renderer, title string) *Engine {
	return &Engine{
		backend:  backend,
		state:    state,
		renderer: renderer,
		title:    title,
	}
}

// Submit applies a search box action and reports whether it started a new search.
//
// A non-empty query starts a search from overview mode, or from search mode when it
// differs from the active query.
func (e *Engine) Submit(ctx context.Context, action Action) (bool, error) {
	query := strings.TrimSpace(action.Query)
	if err := e.state.SetSearchInput(ctx, query); err != nil {
		return false, fmt.Errorf("store search input: %w", err)
	}
	if !action.Submitted || query == "" {
		return false, nil
	}
	if e.state.IsSearchTriggered() && query == e.state.SearchQuery() {
		return false, nil
	}

	if err := e.state.TriggerSearch(ctx, query); err != nil {
		return false, fmt.Errorf("trigger search: %w", err)
	}
	logging.FromContext(ctx).InfoContext(ctx, "search triggered", slog.String("query", query))
	return true, nil
}

// Reset returns the home tab to overview mode.
func (e *Engine) Reset(ctx context.Context) error {
	return e.state.ResetSearch(ctx)
}

// Home builds the home tab for the current state.
func (e *Engine) Home(ctx context.Context) *HomeView {
	v := &HomeView{
		Title:  e.title,
		Mode:   ModeOverview,
		Input:  e.state.SearchInput(),
		Stats:  e.backend.AppStats(ctx),
		Status: e.backend.ConnectionStatus(ctx),
	}
	if e.state.IsOverviewMode() {
		return v
	}

	v.Mode = ModeSearch
	v.Query = e.state.SearchQuery()
	v.Input = v.Query

	resp := e.backend.Search(ctx, types.NewSearchRequest(v.Query))
	v.Search = &SearchView{
		Success: resp.Success,
		Message: resp.Message,
		Results: resp.Results,
	}
	return v
}

// Run applies action and renders the home tab.
func (e *Engine) Run(ctx context.Context, w io.Writer, action Action) error {
	if _, err := e.Submit(ctx, action); err != nil {
		return err
	}
	return e.RenderHome(ctx, w)
}

// RenderHome renders the home tab without changing the state.
func (e *Engine) RenderHome(ctx context.Context, w io.Writer) error {
	return e.renderer.RenderHome(w, e.Home(ctx))
}

// Data builds the data tab. The three sections are loaded concurrently and fail independently.
func (e *Engine) Data(ctx context.Context) *DataView {
	v := &DataView{Title: e.title}

	status := e.backend.ConnectionStatus(ctx)
	if !status.GCPConnected {
		v.Message = status.GCPMessage
		return v
	}
	v.Connected = true

	var eg errgroup.Group
	eg.Go(func() error {
		v.Portfolio = sectionOf(e.backend.PortfolioChart(ctx))
		return nil
	})
	eg.Go(func() error {
		v.Distribution = sectionOf(e.backend.DistributionChart(ctx))
		return nil
	})
	eg.Go(func() error {
		v.Outliers = sectionOf(e.backend.FormattedComponentOutliers(ctx))
		return nil
	})
	_ = eg.Wait()

	return v
}

// RunDataTab renders the data tab.
func (e *Engine) RunDataTab(ctx context.Context, w io.Writer) error {
	return e.renderer.RenderData(w, e.Data(ctx))
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
