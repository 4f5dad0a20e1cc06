// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned when a session does not exist or has expired.
	ErrNotFound = errors.New("session not found")

	// ErrVersionConflict is returned when a session was modified since it was read.
	ErrVersionConflict = errors.New("session version conflict")
)

// DefaultTTL is the idle lifetime of a stored session.
const DefaultTTL = 24 * time.Hour

// Record is the persisted dashboard state of one visitor.
type Record struct {
	ID              string `json:"id"`
	SearchTriggered bool   `json:"search_triggered"`
	SearchQuery     string `json:"search_query"`
	SearchInput     string `json:"search_input"`
	Version         int64  `json:"version"`

	// CreatedAt and UpdatedAt are Unix milliseconds.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

func (r *Record) trigger(query string) {
	r.SearchQuery = query
	r.SearchTriggered = true
}

func (r *Record) reset() {
	r.SearchTriggered = false
	r.SearchQuery = ""
}

// Store persists session records with optimistic locking.
type Store interface {
	// Create stores a new record with Version 1.
	Create(ctx context.Context, rec *Record) error

	// Get returns the record for id, or ErrNotFound. Reads refresh the TTL.
	Get(ctx context.Context, id string) (*Record, error)

	// Update stores rec if its Version matches the stored one, then increments rec.Version.
	Update(ctx context.Context, rec *Record) error

	// Delete removes the record for id.
	Delete(ctx context.Context, id string) error

	// Close releases the store.
	Close() error
}

// StoreType names a [Store] backend.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// StoreOptions configures [NewStore].
type StoreOptions struct {
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewStore returns the [Store] of type t.
func NewStore(t StoreType, opts StoreOptions) (Store, error) {
	switch t {
	case StoreTypeMemory, "":
		return NewMemoryStore(opts.TTL), nil
	case StoreTypeRedis:
		if opts.RedisAddr == "" {
			return nil, errors.New("redis session store requires an address")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		return NewRedisStore(client, opts.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session store type %q", t)
	}
}
