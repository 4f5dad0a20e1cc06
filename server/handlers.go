// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-json-experiment/json"

	"github.com/go-a2a/patent-analyst/artifact"
	"github.com/go-a2a/patent-analyst/controller"
	"github.com/go-a2a/patent-analyst/dashboard"
	"github.com/go-a2a/patent-analyst/pkg/logging"
	"github.com/go-a2a/patent-analyst/search"
	"github.com/go-a2a/patent-analyst/session"
	"github.com/go-a2a/patent-analyst/types"
)

// maxFormBytes bounds the body of form posts.
const maxFormBytes = 64 << 10

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /search", s.handleSearchForm)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("GET /data", s.handleData)
	mux.HandleFunc("GET /open", s.handleOpen)

	mux.HandleFunc("GET /api/search", s.handleAPISearch)
	mux.HandleFunc("GET /api/patents", s.handleAPIPatents)
	mux.HandleFunc("GET /api/patents/detail", s.handleAPIPatentDetail)
	mux.HandleFunc("GET /api/charts/{name}", s.handleAPIChart)
	mux.HandleFunc("GET /api/status", s.handleAPIStatus)
	mux.HandleFunc("GET /api/stats", s.handleAPIStats)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	return s.withRequestLogging(mux)
}

// openSession loads the visitor session named by the cookie, starting a new one when
// needed, and refreshes the cookie.
func (s *Server) openSession(w http.ResponseWriter, r *http.Request) (*session.StoreState, error) {
	var id string
	if c, err := r.Cookie(s.cookieName); err == nil {
		id = c.Value
	}

	state, err := session.Open(r.Context(), s.store, id, nil)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    state.ID(),
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}

func (s *Server) engine(state session.State) *dashboard.Engine {
	return dashboard.NewEngine(s.backend, state, s.renderer, s.title)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	state, err := s.openSession(w, r)
	if err != nil {
		s.serverError(w, r, "open session", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.engine(state).RenderHome(r.Context(), w); err != nil {
		s.serverError(w, r, "render home", err)
	}
}

func (s *Server) handleSearchForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	state, err := s.openSession(w, r)
	if err != nil {
		s.serverError(w, r, "open session", err)
		return
	}
	if _, err := s.engine(state).Submit(r.Context(), dashboard.Action{Submitted: true, Query: r.PostForm.Get("q")}); err != nil {
		s.serverError(w, r, "submit search", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	state, err := s.openSession(w, r)
	if err != nil {
		s.serverError(w, r, "open session", err)
		return
	}
	if err := s.engine(state).Reset(r.Context()); err != nil {
		s.serverError(w, r, "reset search", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// The data tab does not read visitor state.
	if err := s.engine(session.NewMemoryState(nil)).RunDataTab(r.Context(), w); err != nil {
		s.serverError(w, r, "render data", err)
	}
}

// handleOpen redirects to a short-lived signed URL for the document at ?uri=.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	link, err := s.backend.DocumentLink(r.Context(), uri)

	var uriErr *artifact.GSURIError
	switch {
	case errors.As(err, &uriErr):
		http.Error(w, uriErr.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, controller.ErrNoSigner):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "sign document URL", slog.String("uri", uri), slog.Any("error", err))
		http.Error(w, "could not sign document URL", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, link, http.StatusFound)
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	req := types.NewSearchRequest(r.URL.Query().Get("q"))
	if req.Query == "" {
		s.writeJSON(w, r, http.StatusBadRequest, types.SearchResponse{Message: search.ErrEmptyQuery.Error()})
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.backend.Search(r.Context(), req))
}

func (s *Server) handleAPIPatents(w http.ResponseWriter, r *http.Request) {
	writeResult(s, w, r, s.backend.SearchGrouped(r.Context(), r.URL.Query().Get("q")))
}

func (s *Server) handleAPIPatentDetail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeResult(s, w, r, s.backend.PatentDetail(r.Context(), q.Get("q"), q.Get("uri")))
}

func (s *Server) handleAPIChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch name := r.PathValue("name"); name {
	case "portfolio":
		writeResult(s, w, r, s.backend.PortfolioChart(ctx))
	case "distribution":
		writeResult(s, w, r, s.backend.DistributionChart(ctx))
	case "outliers":
		writeResult(s, w, r, s.backend.FormattedComponentOutliers(ctx))
	default:
		writeResult(s, w, r, types.Fail[struct{}](types.KindInvalidInput, "unknown chart "+name))
	}
}

func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.backend.ConnectionStatus(r.Context()))
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.backend.AppStats(r.Context()))
}

type healthBody struct {
	Status   string                  `json:"status"`
	BigQuery *types.ConnectionStatus `json:"bigquery,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, healthBody{Status: "ok"})
}

// handleReadyz reports ready while serving. A missing BigQuery connection does not make the
// server unready since the dashboard degrades to its disconnected views.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		s.writeJSON(w, r, http.StatusServiceUnavailable, healthBody{Status: "unavailable"})
		return
	}
	status := s.backend.ConnectionStatus(r.Context())
	s.writeJSON(w, r, http.StatusOK, healthBody{Status: "ok", BigQuery: &status})
}

// statusFor maps a result error kind to an HTTP status.
func statusFor(kind types.ErrorKind) int {
	switch kind {
	case types.KindNone:
		return http.StatusOK
	case types.KindInvalidInput:
		return http.StatusBadRequest
	case types.KindNotTechnical:
		return http.StatusUnprocessableEntity
	case types.KindClientUnavailable, types.KindNotConnected:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeResult[T any](s *Server, w http.ResponseWriter, r *http.Request, res types.Result[T]) {
	status := http.StatusOK
	if !res.Success {
		status = statusFor(res.ErrorKind)
	}
	s.writeJSON(w, r, status, res)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, v); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "encode response", slog.Any("error", err))
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if errors.Is(err, context.Canceled) {
		return
	}
	logging.FromContext(ctx).ErrorContext(ctx, op+" failed", slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
