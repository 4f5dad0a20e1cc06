// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-a2a/patent-analyst/dashboard"
	"github.com/go-a2a/patent-analyst/pkg/logging"
	"github.com/go-a2a/patent-analyst/session"
	"github.com/go-a2a/patent-analyst/types"
)

// Defaults applied by [New].
const (
	DefaultCookieName      = "patent_session"
	DefaultShutdownTimeout = 30 * time.Second
)

// Backend is everything the HTTP surface needs from the application.
type Backend interface {
	dashboard.Backend
	SearchGrouped(ctx context.Context, query string) types.Result[[]types.PatentMatch]
	PatentDetail(ctx context.Context, query, uri string) types.Result[[]types.SearchResult]
	DocumentLink(ctx context.Context, uri string) (string, error)
}

// Server serves the dashboard.
type Server struct {
	backend  Backend
	store    session.Store
	renderer *dashboard.HTMLRenderer
	logger   *slog.Logger

	title           string
	cookieName      string
	sessionTTL      time.Duration
	secureCookie    bool
	shutdownTimeout time.Duration

	ready   atomic.Bool
	handler http.Handler
}

// Option configures a [Server].
type Option func(*Server)

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithCookie sets the session cookie name and lifetime.
func WithCookie(name string, ttl time.Duration) Option {
	return func(s *Server) {
		s.cookieName = name
		s.sessionTTL = ttl
	}
}

// WithSecureCookie marks the session cookie as HTTPS only.
func WithSecureCookie(secure bool) Option {
	return func(s *Server) {
		s.secureCookie = secure
	}
}

// WithShutdownTimeout bounds how long [Server.Serve] waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New returns a [Server] backed by backend, keeping visitor state in store.
func New(backend Backend, store session.Store, opts ...Option) (*Server, error) {
	renderer, err := dashboard.NewHTMLRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		backend:         backend,
		store:           store,
		renderer:        renderer,
		logger:          slog.Default(),
		title:           "AI Patent Analyst",
		cookieName:      DefaultCookieName,
		sessionTTL:      session.DefaultTTL,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()

	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// SetReady sets the state reported by /readyz.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// ListenAndServe listens on addr and calls [Server.Serve].
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	base := logging.NewContext(context.WithoutCancel(ctx), s.logger)
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.SetReady(true)
	s.logger.InfoContext(ctx, "dashboard listening", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		s.SetReady(false)
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.SetReady(false)
	s.logger.InfoContext(ctx, "shutting down", slog.Duration("timeout", s.shutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
