// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the discovery pipeline over HTTP. Progress
// events are streamed as Server-Sent Events when the client asks for
// text/event-stream, and as newline-delimited JSON otherwise.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/discovery-engine/internal/pipeline"
	"github.com/pdiddy/discovery-engine/pkg/types"
)

// Server serves the discovery API on a plain ServeMux.
type Server struct {
	pipeline *pipeline.Pipeline
	limiter  *rate.Limiter
	addr     string
}

// New builds a server around the pipeline. When RequestsPerMinute is
// set, discovery requests beyond that rate are rejected with 429.
func New(p *pipeline.Pipeline, cfg types.ServerConfig) *Server {
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), cfg.RequestsPerMinute)
	}

	return &Server{pipeline: p, limiter: limiter, addr: addr}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.healthz)
	mux.HandleFunc("/api/v1/discover", s.discover)
	return loggingMiddleware(mux)
}

// ListenAndServe runs the server until the context is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) discover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if s.limiter != nil && !s.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		return
	}

	var query types.Query
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request body must be JSON"})
		return
	}

	// Reject bad queries before the stream opens; after this point all
	// failures travel as error events.
	query, err := s.pipeline.Validate(query)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyQuery) || errors.Is(err, pipeline.ErrTopKRange) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	emit, err := newEventWriter(w, r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Failures from here on are already reported as an error event.
	_ = s.pipeline.Run(r.Context(), query, emit)
}

// newEventWriter picks the stream framing from the Accept header and
// writes the response headers.
func newEventWriter(w http.ResponseWriter, r *http.Request) (pipeline.EmitFunc, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming is not supported by response writer")
	}

	sse := r.Header.Get("Accept") == "text/event-stream"
	if sse {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
	} else {
		w.Header().Set("Content-Type", "application/x-ndjson")
	}
	w.WriteHeader(http.StatusOK)

	return func(ev types.Event) error {
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if sse {
			_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
		} else {
			_, err = fmt.Fprintf(w, "%s\n", payload)
		}
		if err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String())
	})
}
