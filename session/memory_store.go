// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"sync"
	"time"

	deepcopy "github.com/tiendc/go-deepcopy"
)

type memoryEntry struct {
	rec     *Record
	expires time.Time
}

// MemoryStore is an in-process [Store]. Records are copied in and out so callers never
// share memory with the store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty [MemoryStore] whose records expire after ttl of inactivity.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create implements [Store].
func (s *MemoryStore) Create(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec.CreatedAt = now.UnixMilli()
	rec.UpdatedAt = rec.CreatedAt
	rec.Version = 1

	return s.put(rec, now)
}

// Get implements [Store].
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.expires = s.now().Add(s.ttl)
	s.entries[id] = e

	var out Record
	if err := deepcopy.Copy(&out, e.rec); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update implements [Store].
func (s *MemoryStore) Update(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(rec.ID)
	if !ok {
		return ErrNotFound
	}
	if e.rec.Version != rec.Version {
		return ErrVersionConflict
	}

	now := s.now()
	rec.Version++
	rec.UpdatedAt = now.UnixMilli()
	return s.put(rec, now)
}

// Delete implements [Store].
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

// Close implements [Store].
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.entries)
	return nil
}

func (s *MemoryStore) lookup(id string) (memoryEntry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return memoryEntry{}, false
	}
	if s.now().After(e.expires) {
		delete(s.entries, id)
		return memoryEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) put(rec *Record, now time.Time) error {
	stored := new(Record)
	if err := deepcopy.Copy(stored, rec); err != nil {
		return err
	}
	s.entries[rec.ID] = memoryEntry{rec: stored, expires: now.Add(s.ttl)}
	return nil
}
