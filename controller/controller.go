// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/go-a2a/patent-analyst/config"
	"github.com/go-a2a/patent-analyst/pkg/logging"
	"github.com/go-a2a/patent-analyst/search"
	"github.com/go-a2a/patent-analyst/visualization"
	"github.com/go-a2a/patent-analyst/warehouse"
)

// ErrNotConnected is returned when the BigQuery connection check fails.
var ErrNotConnected = errors.New("BigQuery not connected")

// ErrNoSigner is returned by [Controller.DocumentLink] when no URL signer is configured.
var ErrNoSigner = errors.New("document links are not configured")

// URLSigner issues browser-openable URLs for gs:// documents.
type URLSigner interface {
	SignedURL(ctx context.Context, uri string) (string, error)
}

// Controller is the application controller.
type Controller struct {
	cfg      *config.Config
	provider warehouse.Provider
	signer   URLSigner
	link     visualization.LinkFunc

	searchOpts []search.Option
	cacheTTL   time.Duration

	mu     sync.Mutex
	search *search.Service
	viz    *visualization.Service

	cacheMu sync.Mutex
	cache   *warehouse.CachingQuerier

	group singleflight.Group
}

// Option configures a [Controller].
type Option func(*Controller)

// WithSearchService injects a ready search service.
func WithSearchService(s *search.Service) Option {
	return func(c *Controller) {
		c.search = s
	}
}

// WithVisualizationService injects a ready visualization service.
func WithVisualizationService(v *visualization.Service) Option {
	return func(c *Controller) {
		c.viz = v
	}
}

// WithSearchOptions passes opts to the lazily created search service.
func WithSearchOptions(opts ...search.Option) Option {
	return func(c *Controller) {
		c.searchOpts = append(c.searchOpts, opts...)
	}
}

// WithSigner sets the signer used by [Controller.DocumentLink].
func WithSigner(s URLSigner) Option {
	return func(c *Controller) {
		c.signer = s
	}
}

// WithLinkFunc sets how outlier rows link to their documents.
func WithLinkFunc(fn visualization.LinkFunc) Option {
	return func(c *Controller) {
		c.link = fn
	}
}

// WithQueryCache caches the corpus statistics and visualization queries for ttl.
// Connection checks and searches always reach BigQuery.
func WithQueryCache(ttl time.Duration) Option {
	return func(c *Controller) {
		c.cacheTTL = ttl
	}
}

// New returns a [Controller] reading BigQuery through provider.
func New(cfg *config.Config, provider warehouse.Provider, opts ...Option) *Controller {
	c := &Controller{
		cfg:      cfg,
		provider: provider,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the application configuration.
func (c *Controller) Config() *config.Config {
	return c.cfg
}

// Close releases the query cache. The provider is left open.
func (c *Controller) Close() error {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	if c.cache == nil {
		return nil
	}
	err := c.cache.Close()
	c.cache = nil
	return err
}

// analyticsQuerier returns q behind the query cache when one is configured.
func (c *Controller) analyticsQuerier(ctx context.Context, q warehouse.Querier) warehouse.Querier {
	if c.cacheTTL <= 0 {
		return q
	}

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	if c.cache == nil {
		cache, err := warehouse.NewCachingQuerier(q, c.cacheTTL)
		if err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "query cache disabled", slog.Any("error", err))
			return q
		}
		c.cache = cache
	}
	return c.cache
}

// bigQuerySetup returns a querier once BigQuery is reachable and a project is configured.
func (c *Controller) bigQuerySetup(ctx context.Context) (warehouse.Querier, error) {
	status := c.ConnectionStatus(ctx)
	if !status.GCPConnected {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, status.GCPMessage)
	}

	q, err := c.provider.Querier(ctx)
	if err != nil || q == nil {
		return nil, errors.New("Failed to get BigQuery client")
	}

	if c.cfg.GCP.ProjectID == "" {
		return nil, errors.New("GOOGLE_CLOUD_PROJECT_ID not configured")
	}
	return q, nil
}

// searchService returns the search service, creating it on first use. The error explains
// why BigQuery cannot be used yet.
func (c *Controller) searchService(ctx context.Context) (*search.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.search != nil {
		return c.search, nil
	}
	q, err := c.bigQuerySetup(ctx)
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "semantic search unavailable", slog.String("reason", err.Error()))
		return nil, err
	}
	c.search = search.NewService(search.ConfigFrom(c.cfg), q, c.searchOpts...)
	return c.search, nil
}

func (c *Controller) visualizationService(ctx context.Context) *visualization.Service {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.viz != nil {
		return c.viz
	}
	q, err := c.bigQuerySetup(ctx)
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "visualization unavailable", slog.String("reason", err.Error()))
		return nil
	}
	c.viz = visualization.NewService(c.analyticsQuerier(ctx, q), visualization.TablesFrom(c.cfg))
	return c.viz
}

// DocumentLink returns a signed URL for the document at uri.
func (c *Controller) DocumentLink(ctx context.Context, uri string) (string, error) {
	if c.signer == nil {
		return "", ErrNoSigner
	}
	return c.signer.SignedURL(ctx, uri)
}
