// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"sync"
)

// State is the per-visitor dashboard state.
//
// Reads are served from the state's current snapshot. Mutations persist the change and then
// notify the owner so the page can be rendered again.
type State interface {
	// IsSearchTriggered reports whether the dashboard is in search mode.
	IsSearchTriggered() bool

	// SearchQuery returns the query of the active search, or "".
	SearchQuery() string

	// TriggerSearch enters search mode for query.
	TriggerSearch(ctx context.Context, query string) error

	// ResetSearch returns to overview mode and clears the query.
	ResetSearch(ctx context.Context) error

	// SearchInput returns the text last typed in the search box.
	SearchInput() string

	// SetSearchInput records the text typed in the search box without triggering a search.
	SetSearchInput(ctx context.Context, input string) error

	// IsOverviewMode reports whether no search is active.
	IsOverviewMode() bool
}

// ChangeFunc is called after every successful state mutation.
type ChangeFunc func(ctx context.Context)

// MemoryState is a process-local [State].
type MemoryState struct {
	mu       sync.RWMutex
	rec      Record
	onChange ChangeFunc
}

var _ State = (*MemoryState)(nil)

// NewMemoryState returns an empty [MemoryState]. onChange may be nil.
func NewMemoryState(onChange ChangeFunc) *MemoryState {
	return &MemoryState{onChange: onChange}
}

// IsSearchTriggered implements [State].
func (s *MemoryState) IsSearchTriggered() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.SearchTriggered
}

// SearchQuery implements [State].
func (s *MemoryState) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.SearchQuery
}

// SearchInput implements [State].
func (s *MemoryState) SearchInput() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.SearchInput
}

// IsOverviewMode implements [State].
func (s *MemoryState) IsOverviewMode() bool {
	return !s.IsSearchTriggered()
}

// TriggerSearch implements [State].
func (s *MemoryState) TriggerSearch(ctx context.Context, query string) error {
	s.update(ctx, func(r *Record) { r.trigger(query) })
	return nil
}

// ResetSearch implements [State].
func (s *MemoryState) ResetSearch(ctx context.Context) error {
	s.update(ctx, (*Record).reset)
	return nil
}

// SetSearchInput implements [State].
func (s *MemoryState) SetSearchInput(ctx context.Context, input string) error {
	s.mu.Lock()
	s.rec.SearchInput = input
	s.mu.Unlock()
	return nil
}

func (s *MemoryState) update(ctx context.Context, fn func(*Record)) {
	s.mu.Lock()
	fn(&s.rec)
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(ctx)
	}
}
