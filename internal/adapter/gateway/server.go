// Package gateway exposes the assistant's health endpoints: a liveness
// check for process supervision and a readiness check backed by a
// storage ping.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"oura-ai/internal/infra/middleware"
)

// Pinger verifies a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// readyTimeout bounds the storage ping so a wedged database cannot hang
// the readiness probe.
const readyTimeout = 2 * time.Second

// Rate limits are generous: probes poll every few seconds, so anything
// hitting these is misbehaving.
const (
	rateLimitPerMin = 120
	rateLimitBurst  = 30
)

// Server is a small HTTP server answering /health and /ready.
type Server struct {
	addr        string
	store       Pinger
	logger      *slog.Logger
	httpSrv     *http.Server
	boundAddr   string
	started     time.Time
	lastHandled atomic.Int64 // unix seconds, 0 until the first message
}

// NewServer creates a health server listening on addr.
func NewServer(addr string, store Pinger, logger *slog.Logger) *Server {
	return &Server{
		addr:   addr,
		store:  store,
		logger: logger,
	}
}

// MarkHandled records that a message was just processed. The runtime calls
// this after each handled turn so /health can report recent activity.
func (s *Server) MarkHandled() {
	s.lastHandled.Store(time.Now().Unix())
}

// Start begins serving. Blocks until the context is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)

	handler := middleware.SecurityHeaders(
		middleware.RateLimit(ctx, rateLimitPerMin, rateLimitBurst)(mux))

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("health server listen: %w", err)
	}
	s.boundAddr = listener.Addr().String()
	s.started = time.Now()
	s.httpSrv = &http.Server{Handler: handler}

	s.logger.Info("health server started", "addr", s.boundAddr)

	go func() {
		<-ctx.Done()
		s.Stop(context.Background())
	}()

	if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("health server serve: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// BoundAddr returns the actual address the server bound to. Only valid
// after Start.
func (s *Server) BoundAddr() string { return s.boundAddr }

// healthResponse is the JSON body returned by GET /health.
type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	LastHandled   string `json:"last_handled,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
	if ts := s.lastHandled.Load(); ts != 0 {
		resp.LastHandled = time.Unix(ts, 0).UTC().Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}
