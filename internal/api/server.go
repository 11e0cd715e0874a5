// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the documents of the most recent refresh over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/livegrab/internal/api/middleware"
	"github.com/ManuGH/livegrab/internal/epg"
	"github.com/ManuGH/livegrab/internal/jobs"
	xglog "github.com/ManuGH/livegrab/internal/log"
	"github.com/ManuGH/livegrab/internal/playlist"
)

const (
	contentTypeM3U  = "audio/x-mpegurl; charset=utf-8"
	contentTypeXML  = "application/xml; charset=utf-8"
	contentTypeJSON = "application/json"
)

// Options configures a Server.
type Options struct {
	// RateLimit is requests per minute per client IP on the document
	// routes; 0 disables limiting.
	RateLimit int
	// RateLimitExempt clients are never limited.
	RateLimitExempt []netip.Prefix
	// RetryAfter is advertised while no refresh has succeeded yet.
	RetryAfter time.Duration
}

// Server holds the last successful refresh and serves it.
type Server struct {
	opts   Options
	router chi.Router

	mu          sync.RWMutex
	current     *jobs.Artifacts
	lastErr     error
	lastAttempt time.Time
}

// New builds a Server with its routes mounted.
func New(opts Options) *Server {
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = 30 * time.Second
	}
	s := &Server{opts: opts}

	r := middleware.NewRouter(middleware.StackConfig{
		TracingService: "livegrab",
		EnableLogging:  true,
		EnableMetrics:  true,
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			PerWindow: opts.RateLimit,
			Window:    time.Minute,
			Exempt:    opts.RateLimitExempt,
		}))
		r.Get("/playlist.m3u", s.handlePlaylist)
		r.Get("/epg.xml", s.handleGuide)
	})
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Publish replaces the served documents with a finished refresh.
func (s *Server) Publish(a *jobs.Artifacts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = a
	s.lastErr = nil
	s.lastAttempt = a.Status.StartedAt
}

// RecordFailure notes a failed refresh. The previous documents stay served.
func (s *Server) RecordFailure(at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	s.lastAttempt = at
}

func (s *Server) snapshot() (*jobs.Artifacts, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.lastAttempt, s.lastErr
}

func (s *Server) notReady(w http.ResponseWriter) {
	w.Header().Set("Retry-After", strconv.Itoa(int(s.opts.RetryAfter.Seconds())))
	http.Error(w, "no refresh has completed yet", http.StatusServiceUnavailable)
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	a, _, _ := s.snapshot()
	if a == nil {
		s.notReady(w)
		return
	}
	var buf bytes.Buffer
	if err := playlist.WriteM3U(&buf, a.Playlist); err != nil {
		xglog.FromContext(r.Context()).Error().Err(err).Str(xglog.FieldEvent, "playlist.render_failed").Msg("render playlist")
		http.Error(w, "render playlist", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeM3U)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	a, _, _ := s.snapshot()
	if a == nil {
		s.notReady(w)
		return
	}
	var buf bytes.Buffer
	if err := epg.Encode(&buf, a.Guide); err != nil {
		xglog.FromContext(r.Context()).Error().Err(err).Str(xglog.FieldEvent, "xmltv.render_failed").Msg("render guide")
		http.Error(w, "render guide", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeXML)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	a, _, _ := s.snapshot()
	if a == nil {
		s.notReady(w)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

type statusResponse struct {
	Ready       bool         `json:"ready"`
	LastAttempt *time.Time   `json:"last_attempt,omitempty"`
	LastError   string       `json:"last_error,omitempty"`
	LastSuccess *jobs.Status `json:"last_success,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	a, attempt, lastErr := s.snapshot()
	resp := statusResponse{Ready: a != nil}
	if !attempt.IsZero() {
		resp.LastAttempt = &attempt
	}
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}
	if a != nil {
		st := a.Status
		resp.LastSuccess = &st
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	_ = json.NewEncoder(w).Encode(resp)
}
