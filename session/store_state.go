// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/go-a2a/patent-analyst/pkg/logging"
)

// maxConflictRetries bounds how often a mutation is retried after a concurrent update.
const maxConflictRetries = 3

// StoreState is a [State] persisted in a [Store] under a session ID.
type StoreState struct {
	store    Store
	rec      *Record
	onChange ChangeFunc
}

var _ State = (*StoreState)(nil)

// NewID returns a fresh session ID.
func NewID() string {
	return uuid.NewString()
}

// Open loads the session id from store, creating it when it does not exist or has expired.
// An empty id starts a new session. onChange may be nil.
func Open(ctx context.Context, store Store, id string, onChange ChangeFunc) (*StoreState, error) {
	if id != "" {
		rec, err := store.Get(ctx, id)
		switch {
		case err == nil:
			return &StoreState{store: store, rec: rec, onChange: onChange}, nil
		case !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("load session: %w", err)
		}
	}

	if _, err := uuid.Parse(id); err != nil {
		id = NewID()
	}
	rec := &Record{ID: id}
	if err := store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logging.FromContext(ctx).DebugContext(ctx, "created session", slog.String("session_id", id))

	return &StoreState{store: store, rec: rec, onChange: onChange}, nil
}

// ID returns the session ID.
func (s *StoreState) ID() string {
	return s.rec.ID
}

// Record returns a copy of the current snapshot.
func (s *StoreState) Record() Record {
	return *s.rec
}

// IsSearchTriggered implements [State].
func (s *StoreState) IsSearchTriggered() bool {
	return s.rec.SearchTriggered
}

// SearchQuery implements [State].
func (s *StoreState) SearchQuery() string {
	return s.rec.SearchQuery
}

// SearchInput implements [State].
func (s *StoreState) SearchInput() string {
	return s.rec.SearchInput
}

// IsOverviewMode implements [State].
func (s *StoreState) IsOverviewMode() bool {
	return !s.rec.SearchTriggered
}

// TriggerSearch implements [State].
func (s *StoreState) TriggerSearch(ctx context.Context, query string) error {
	if err := s.mutate(ctx, func(r *Record) { r.trigger(query) }); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// ResetSearch implements [State].
func (s *StoreState) ResetSearch(ctx context.Context) error {
	if err := s.mutate(ctx, (*Record).reset); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// SetSearchInput implements [State].
func (s *StoreState) SetSearchInput(ctx context.Context, input string) error {
	return s.mutate(ctx, func(r *Record) { r.SearchInput = input })
}

func (s *StoreState) changed(ctx context.Context) {
	if s.onChange != nil {
		s.onChange(ctx)
	}
}

// mutate applies fn and persists the result, reloading and reapplying on version conflicts.
func (s *StoreState) mutate(ctx context.Context, fn func(*Record)) error {
	for range maxConflictRetries {
		next := *s.rec
		fn(&next)

		err := s.store.Update(ctx, &next)
		switch {
		case err == nil:
			s.rec = &next
			return nil
		case errors.Is(err, ErrVersionConflict):
			logging.FromContext(ctx).DebugContext(ctx, "session changed concurrently, retrying", slog.String("session_id", s.rec.ID))
		case errors.Is(err, ErrNotFound):
			next = Record{ID: s.rec.ID}
			fn(&next)
			if err := s.store.Create(ctx, &next); err != nil {
				return fmt.Errorf("recreate session: %w", err)
			}
			s.rec = &next
			return nil
		default:
			return fmt.Errorf("update session: %w", err)
		}

		rec, err := s.store.Get(ctx, s.rec.ID)
		if err != nil {
			return fmt.Errorf("reload session: %w", err)
		}
		s.rec = rec
	}
	return ErrVersionConflict
}
