// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/go-a2a/patent-analyst/internal/observability"
	"github.com/go-a2a/patent-analyst/pkg/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withRequestLogging attaches a request-scoped logger and a span to every request.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.With(
			slog.String("request_id", uuid.NewString()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		ctx := logging.NewContext(r.Context(), logger)
		ctx, span := observability.StartSpan(ctx, "http "+r.Method,
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
		)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		var err error
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
				logger.ErrorContext(ctx, "handler panicked", slog.Any("error", err))
				http.Error(rec, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			span.SetAttributes(attribute.Int("http.status_code", rec.status))
			observability.EndSpan(span, err)

			logger.DebugContext(ctx, "request served",
				slog.Int("status", rec.status),
				slog.Duration("elapsed", time.Since(start)),
			)
		}()

		next.ServeHTTP(rec, r.WithContext(ctx))
	})
}
