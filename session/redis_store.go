// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "patent-analyst:session:"

// RedisStore is a [Store] backed by Redis. Updates use WATCH/MULTI/EXEC for optimistic locking.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore returns a [RedisStore] using client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(id string) string {
	return redisKeyPrefix + id
}

// Create implements [Store].
func (s *RedisStore) Create(ctx context.Context, rec *Record) error {
	now := time.Now().UnixMilli()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.Version = 1

	val, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.key(rec.ID), val, s.ttl).Err()
}

// Get implements [Store].
func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	val, err := s.client.GetEx(ctx, s.key(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := sonic.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &rec, nil
}

// Update implements [Store].
func (s *RedisStore) Update(ctx context.Context, rec *Record) error {
	key := s.key(rec.ID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var stored Record
		if err := sonic.Unmarshal(val, &stored); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}
		if stored.Version != rec.Version {
			return ErrVersionConflict
		}

		next := *rec
		next.Version++
		next.UpdatedAt = time.Now().UnixMilli()
		newVal, err := sonic.Marshal(&next)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, s.ttl)
			return nil
		}); err != nil {
			return err
		}
		*rec = next
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	return err
}

// Delete implements [Store].
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

// Close implements [Store].
func (s *RedisStore) Close() error {
	return s.client.Close()
}
