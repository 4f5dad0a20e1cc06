// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package warehouse

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"google.golang.org/api/option"

	"github.com/go-a2a/patent-analyst/pkg/logging"
)

// Provider supplies a [Querier].
type Provider interface {
	Querier(ctx context.Context) (Querier, error)
}

// BuildFunc constructs a [Querier].
type BuildFunc func(ctx context.Context) (Querier, error)

// CachedProvider builds its querier once per process.
//
// Only successful constructions are cached; a failed build is retried on the next call.
type CachedProvider struct {
	mu    sync.Mutex
	build BuildFunc
	q     Querier
}

var _ Provider = (*CachedProvider)(nil)

// NewCachedProvider returns a [CachedProvider] using build.
func NewCachedProvider(build BuildFunc) *CachedProvider {
	return &CachedProvider{build: build}
}

// Querier implements [Provider].
func (p *CachedProvider) Querier(ctx context.Context) (Querier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.q != nil {
		return p.q, nil
	}

	q, err := p.build(ctx)
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "BigQuery client unavailable", slog.Any("error", err))
		return nil, err
	}
	if q == nil {
		return nil, ErrNoClient
	}
	p.q = q
	return q, nil
}

// Close closes the cached querier if it holds resources.
func (p *CachedProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.q.(io.Closer); ok {
		p.q = nil
		return c.Close()
	}
	return nil
}

// StaticProvider returns an injected querier.
type StaticProvider struct {
	Q Querier
}

var _ Provider = StaticProvider{}

// Querier implements [Provider].
func (p StaticProvider) Querier(context.Context) (Querier, error) {
	if p.Q == nil {
		return nil, ErrNoClient
	}
	return p.Q, nil
}

// ClientSettings configures [NewClientBuilder].
type ClientSettings struct {
	ProjectID          string
	Location           string
	ServiceAccountJSON string
}

// NewClientBuilder returns a [BuildFunc] that creates an authenticated [Client].
func NewClientBuilder(s ClientSettings) BuildFunc {
	return func(ctx context.Context) (Querier, error) {
		creds, err := Credentials(s.ServiceAccountJSON)
		if err != nil {
			return nil, err
		}

		client, err := NewClient(ctx, s.ProjectID, s.Location, option.WithAuthCredentials(creds))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
