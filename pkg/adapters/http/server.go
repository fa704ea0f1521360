// Package http exposes the kernel's metrics and health over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusProvider returns the latest kernel status snapshot.
// It is called from HTTP goroutines and must be safe for concurrent use.
type StatusProvider interface {
	Status() domain.Status
}

// NewHandler builds the router: /metrics serves gatherer, /healthz reports status.
func NewHandler(gatherer prometheus.Gatherer, status StatusProvider) http.Handler {
	r := chi.NewRouter()

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		snap := status.Status()
		code := http.StatusOK
		if snap.State == domain.StateShutdown.String() || snap.State == domain.StateQuit.String() {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(snap)
	})

	return r
}

// Server runs the handler on its own listener until Shutdown.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server for addr (host:port).
func NewServer(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener and serves in the background.
// A bind failure is returned synchronously.
func (s *Server) Start() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", "err", err)
		}
	}()
	s.logger.Info("metrics server listening", "addr", ln.Addr().String())
	return ln.Addr(), nil
}

// Shutdown gracefully stops the server, closing it if ctx expires first.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		_ = s.srv.Close()
		return err
	}
	return nil
}
