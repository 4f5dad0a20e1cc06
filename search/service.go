// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/go-a2a/patent-analyst/pkg/logging"
	"github.com/go-a2a/patent-analyst/types"
	"github.com/go-a2a/patent-analyst/warehouse"
)

// MaxQueryRunes caps the length of a sanitized query.
const MaxQueryRunes = 512

var (
	// ErrEmptyQuery is returned when a query is empty after sanitizing.
	ErrEmptyQuery = errors.New("Please enter a valid search query.")

	// ErrInvalidInput is returned by [Service.ComponentsForURI] for an empty query or URI.
	ErrInvalidInput = errors.New("Invalid query or URI.")
)

// Hit is a single component matched by the vector index.
type Hit struct {
	URI               string  `json:"uri"`
	ComponentName     string  `json:"component_name"`
	ComponentFunction string  `json:"component_function"`
	Distance          float64 `json:"distance"`
}

// Similarity is the hit's similarity as a whole percentage.
func (h Hit) Similarity() int {
	return types.Similarity(h.Distance)
}

func hitFromRow(r warehouse.Row) Hit {
	return Hit{
		URI:               r.String("uri"),
		ComponentName:     r.String("component_name"),
		ComponentFunction: r.String("component_function"),
		Distance:          r.Float("distance"),
	}
}

// PatentGroup is a patent with its closest matching components.
type PatentGroup struct {
	URI           string  `json:"uri"`
	BestDistance  float64 `json:"best_distance"`
	HitCount      int64   `json:"hit_count"`
	TopComponents []Hit   `json:"top_components"`
}

// Sanitize normalizes raw user input into a query.
//
// Control characters become spaces, surrounding whitespace is trimmed and the result is
// capped at [MaxQueryRunes]. Quoting is left to query parameters.
func Sanitize(raw string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, raw)
	s = strings.TrimSpace(s)

	if r := []rune(s); len(r) > MaxQueryRunes {
		s = strings.TrimSpace(string(r[:MaxQueryRunes]))
	}
	return s
}

// Service runs semantic searches against the patent component index.
type Service struct {
	cfg        Config
	client     warehouse.Querier
	classifier Classifier
	logger     *slog.Logger
}

// Option configures a [Service].
type Option func(*Service)

// WithClassifier overrides the query classifier used when classification is enabled.
func WithClassifier(c Classifier) Option {
	return func(s *Service) {
		s.classifier = c
	}
}

// WithLogger sets the logger of the [Service].
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a search [Service]. client may be nil, in which case every
// operation fails with [warehouse.ErrNoClient].
func NewService(cfg Config, client warehouse.Querier, opts ...Option) *Service {
	s := &Service{
		cfg:    cfg,
		client: client,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.classifier == nil {
		s.classifier = NewBigQueryClassifier(cfg, client)
	}
	return s
}

// Config returns the configuration of the service.
func (s *Service) Config() Config {
	return s.cfg
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.FromContext(ctx)
}

// IsQueryTechnical reports whether query is about a technical topic.
func (s *Service) IsQueryTechnical(ctx context.Context, query string) (bool, error) {
	if s.client == nil {
		return false, warehouse.ErrNoClient
	}
	return s.classifier.IsTechnical(ctx, query)
}

// VectorSearch returns the components closer than threshold to query among the topK nearest.
func (s *Service) VectorSearch(ctx context.Context, query string, threshold float64, topK int) ([]Hit, error) {
	if s.client == nil {
		return nil, warehouse.ErrNoClient
	}

	stmt := s.cfg.VectorSearchStatement(query, threshold, topK)
	rows, err := s.client.Query(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, hitFromRow(r))
	}
	return hits, nil
}

// Run sanitizes raw, optionally classifies it and runs the vector search with the
// configured threshold and top_k.
func (s *Service) Run(ctx context.Context, raw string) types.Result[[]Hit] {
	query := Sanitize(raw)
	if query == "" {
		return types.Fail[[]Hit](types.KindInvalidInput, ErrEmptyQuery.Error())
	}
	if s.client == nil {
		return types.Fail[[]Hit](types.KindClientUnavailable, warehouse.ErrNoClient.Error())
	}

	logger := s.log(ctx)
	if s.cfg.Classify {
		technical, err := s.IsQueryTechnical(ctx, query)
		if err != nil {
			logger.ErrorContext(ctx, "query classification failed", slog.Any("error", err))
			return types.Fail[[]Hit](types.KindQueryFailed, "Classification failed: "+err.Error())
		}
		if !technical {
			return types.Fail[[]Hit](types.KindNotTechnical, "Query is not technical. Please enter a query related to a technical component or function.")
		}
	}

	hits, err := s.VectorSearch(ctx, query, s.cfg.DistanceThreshold, s.cfg.TopK)
	if err != nil {
		logger.ErrorContext(ctx, "vector search failed", slog.String("query", query), slog.Any("error", err))
		return types.Fail[[]Hit](types.KindQueryFailed, "Vector search failed: "+err.Error())
	}

	shown := strings.TrimSpace(raw)
	if len(hits) == 0 {
		return types.OK(fmt.Sprintf("No results found for '%s'. Try a different query.", shown), hits)
	}
	logger.InfoContext(ctx, "search completed", slog.String("query", query), slog.Int("results", len(hits)))
	return types.OK(fmt.Sprintf("Found %d results for '%s'.", len(hits), shown), hits)
}

// GroupedSearch returns the patents matching query, best first, each with its closest components.
func (s *Service) GroupedSearch(ctx context.Context, raw string) ([]PatentGroup, error) {
	query := Sanitize(raw)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if s.client == nil {
		return nil, warehouse.ErrNoClient
	}

	stmt := s.cfg.GroupedSearchStatement(query)
	rows, err := s.client.Query(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		return nil, err
	}

	groups := make([]PatentGroup, 0, len(rows))
	for _, r := range rows {
		g := PatentGroup{
			URI:          r.String("uri"),
			BestDistance: r.Float("best_distance"),
			HitCount:     r.Int("hit_count"),
		}
		for _, c := range r.Records("top_components") {
			h := hitFromRow(c)
			h.URI = g.URI
			g.TopComponents = append(g.TopComponents, h)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// ComponentsForURI returns every component of the patent at uri that matches query.
func (s *Service) ComponentsForURI(ctx context.Context, raw, uri string) ([]Hit, error) {
	query := Sanitize(raw)
	uri = strings.TrimSpace(uri)
	if query == "" || uri == "" {
		return nil, ErrInvalidInput
	}
	if s.client == nil {
		return nil, warehouse.ErrNoClient
	}

	stmt := s.cfg.DetailStatement(query, uri)
	rows, err := s.client.Query(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, hitFromRow(r))
	}
	return hits, nil
}
