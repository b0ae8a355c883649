// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package server exposes a run's progress over HTTP.
//
// Routes:
//
//	GET /healthz           liveness
//	GET /metrics           Prometheus metrics, when a collector is set
//	GET /results           every result so far, as JSON
//	GET /results/{status}  results with one status
//	GET /stream            websocket; one JSON message per finished case
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/gogpu/cts"
	"github.com/gogpu/cts/logging"
	"github.com/gogpu/cts/metrics"
	"github.com/gogpu/cts/report"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Server holds the live state of one run.
type Server struct {
	router  chi.Router
	hub     *hub
	metrics *metrics.Collector

	mu      sync.RWMutex
	runID   string
	results []report.CaseResult
}

// New returns a Server. collector may be nil.
func New(collector *metrics.Collector) *Server {
	s := &Server{hub: newHub(), metrics: collector}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Get("/healthz", s.healthz)
	r.Get("/results", s.listResults)
	r.Get("/results/{status}", s.listResults)
	r.Get("/stream", s.stream)
	if collector != nil {
		r.Method(http.MethodGet, "/metrics", collector.Handler())
	}
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Begin resets the stored results for a new run.
func (s *Server) Begin(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	s.results = nil
}

// Publish stores a finished result and streams it to subscribers. It has
// the runner.Sink signature.
func (s *Server) Publish(res report.CaseResult) {
	msg, err := json.Marshal(res)
	if err != nil {
		cts.Logger().Warn("server: encode result", "case", res.Query, "error", err)
		return
	}
	s.mu.Lock()
	s.results = append(s.results, res)
	s.mu.Unlock()
	s.hub.broadcast(msg)
}

// Subscribers returns the number of connected stream clients.
func (s *Server) Subscribers() int { return s.hub.count() }

// Close disconnects stream clients and waits for their goroutines.
func (s *Server) Close() { s.hub.close() }

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

type resultsResponse struct {
	RunID   string              `json:"runId"`
	Count   int                 `json:"count"`
	Results []report.CaseResult `json:"results"`
}

func (s *Server) listResults(w http.ResponseWriter, r *http.Request) {
	filter := chi.URLParam(r, "status")
	var want logging.Status
	if filter != "" {
		st, err := logging.ParseStatus(filter)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		want = st
	}

	s.mu.RLock()
	resp := resultsResponse{RunID: s.runID, Results: []report.CaseResult{}}
	for _, res := range s.results {
		if filter == "" || res.Status == want {
			resp.Results = append(resp.Results, res)
		}
	}
	s.mu.RUnlock()
	resp.Count = len(resp.Results)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		cts.Logger().Debug("server: websocket upgrade failed", "error", err)
		return
	}
	if !s.hub.add(conn) {
		_ = conn.Close()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs each request at debug level through the harness
// logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		cts.Logger().Debug("server: request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}
