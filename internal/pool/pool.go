// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package pool provides strongly-typed object pooling and a pool of render buffers.
package pool

import (
	"bytes"
	"sync"
)

// maxBufferSize is the capacity above which a buffer is dropped instead of pooled.
const maxBufferSize = 1 << 20

// Pool is a generics wrapper around [sync.Pool].
type Pool[T any] struct {
	pool sync.Pool
}

// New returns a new [Pool] for T, and will use fn to construct new T's when the pool is empty.
func New[T any](fn func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return fn()
			},
		},
	}
}

// Get gets a T from the pool, or creates a new one if the pool is empty.
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put returns x into the pool.
func (p *Pool[T]) Put(x T) {
	p.pool.Put(x)
}

var buffers = New(func() *bytes.Buffer {
	return new(bytes.Buffer)
})

// GetBuffer returns an empty buffer from the pool.
func GetBuffer() *bytes.Buffer {
	return buffers.Get()
}

// PutBuffer resets buf and returns it to the pool. Oversized buffers are dropped.
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxBufferSize {
		return
	}
	buf.Reset()
	buffers.Put(buf)
}
