// Package httpapi serves the bot's health and statistics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/edgard/plexybot/internal/knowledge"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	readinessTimeout  = 3 * time.Second
)

// StatusSource is the part of the knowledge store the endpoints report on.
type StatusSource interface {
	Degraded() bool
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (knowledge.Stats, error)
}

// NewHandler returns the router:
//
//	GET /healthz  always 200 while the process runs
//	GET /readyz   503 when the store is degraded or unreachable
//	GET /stats    record counts as JSON
func NewHandler(src StatusSource, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "httpapi")

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady(src, log))
	r.Get("/stats", handleStats(src, log))

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(src StatusSource, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if src.Degraded() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := src.Ping(ctx); err != nil {
			log.WarnContext(ctx, "Readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func handleStats(src StatusSource, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := src.Stats(r.Context())
		if err != nil {
			log.WarnContext(r.Context(), "Failed to collect stats", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to collect stats"})
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// Server runs the handler until its context is cancelled.
type Server struct {
	srv *http.Server
	log *slog.Logger
}

// NewServer binds h to addr.
func NewServer(addr string, h http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		log: log.With("component", "http_server"),
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server failed: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return <-errCh
}
