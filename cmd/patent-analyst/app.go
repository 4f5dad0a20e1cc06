// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"google.golang.org/genai"

	"github.com/go-a2a/patent-analyst/artifact"
	"github.com/go-a2a/patent-analyst/config"
	"github.com/go-a2a/patent-analyst/controller"
	"github.com/go-a2a/patent-analyst/internal/observability"
	"github.com/go-a2a/patent-analyst/pkg/logging"
	"github.com/go-a2a/patent-analyst/search"
	"github.com/go-a2a/patent-analyst/warehouse"
)

// app holds the wired application shared by every command.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	controller *controller.Controller

	closers []io.Closer
	tracing *observability.TracerProvider
}

// newApp loads the configuration and wires the controller. Missing configuration is
// logged, not fatal: the dashboard reports it through its connection status.
func newApp(ctx context.Context, flags *rootFlags) (context.Context, *app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return ctx, nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Writer: os.Stderr})
	ctx = logging.NewContext(ctx, logger)

	for _, w := range cfg.Warnings() {
		logger.WarnContext(ctx, w)
	}
	if err := cfg.Validate(); err != nil {
		logger.WarnContext(ctx, "configuration incomplete", slog.Any("error", err))
	}

	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.App.Env,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return ctx, nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		tracing: tp,
	}

	provider := warehouse.NewCachedProvider(warehouse.NewClientBuilder(warehouse.ClientSettings{
		ProjectID:          cfg.GCP.ProjectID,
		Location:           cfg.GCP.Location,
		ServiceAccountJSON: cfg.GCP.ServiceAccountKey,
	}))
	a.closers = append(a.closers, provider)

	opts := []controller.Option{
		controller.WithQueryCache(cfg.BigQuery.CacheTTL),
		controller.WithSearchOptions(search.WithLogger(logger)),
		controller.WithLinkFunc(func(uri string) string {
			if _, _, err := artifact.ParseGSURI(uri); err != nil {
				return ""
			}
			return "/open?uri=" + url.QueryEscape(uri)
		}),
	}

	signer, err := artifact.NewSigner(ctx, cfg.GCP.ServiceAccountKey, cfg.Signer.Expiry)
	if err != nil {
		logger.WarnContext(ctx, "document links disabled", slog.Any("error", err))
	} else {
		a.closers = append(a.closers, signer)
		opts = append(opts, controller.WithSigner(signer))
	}

	if cfg.Search.Classify && cfg.Search.Classifier == "gemini" {
		cls, err := search.NewGeminiClassifier(ctx, cfg.Search.GeminiModel, &genai.ClientConfig{
			APIKey:   cfg.Search.GeminiAPIKey,
			Project:  cfg.GCP.ProjectID,
			Location: geminiLocation(cfg.GCP.Location),
		})
		if err != nil {
			return ctx, nil, errors.Join(err, a.Close(ctx))
		}
		opts = append(opts, controller.WithSearchOptions(search.WithClassifier(cls)))
	}

	a.controller = controller.New(cfg, provider, opts...)
	a.closers = append(a.closers, a.controller)
	return ctx, a, nil
}

// geminiLocation maps a BigQuery multi-region to a Vertex AI region.
func geminiLocation(bqLocation string) string {
	switch bqLocation {
	case "", "US":
		return "us-central1"
	case "EU":
		return "europe-west4"
	default:
		return bqLocation
	}
}

// Close releases clients and flushes traces.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
	}
	return errors.Join(errs...)
}
