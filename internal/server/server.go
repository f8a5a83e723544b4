// Package server implements the demo IntelliMind backend: the /chat, /clear
// and /health contract with canned keyword replies, for local development and
// integration tests.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// AppName is reported by the health endpoint
const AppName = "IntelliMind Assistant Demo"

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Options configures the demo server
type Options struct {
	Logger *zap.Logger
	// Limit and Burst bound /chat requests per client. A zero Limit disables limiting.
	Limit rate.Limit
	Burst int
	// Timeout bounds each request. Zero means no limit.
	Timeout time.Duration
	// Registry receives the server metrics. Nil creates a private registry.
	Registry *prometheus.Registry
}

// DefaultOptions returns the limits used by `intellimind serve`
func DefaultOptions() Options {
	return Options{
		Limit:   5,
		Burst:   10,
		Timeout: 120 * time.Second,
	}
}

// Server is the demo backend
type Server struct {
	logger   *zap.Logger
	history  *History
	metrics  *metrics
	registry *prometheus.Registry
	limiter  *RateLimiter
	timeout  time.Duration
	router   chi.Router
}

// New builds a Server and its routes
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		logger:   logger,
		history:  NewHistory(),
		metrics:  newMetrics(reg),
		registry: reg,
		timeout:  opts.Timeout,
	}
	if opts.Limit > 0 {
		s.limiter = NewRateLimiter(opts.Limit, opts.Burst)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.middleware)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.With(s.rateLimit).Post("/chat", s.handleChat)
	r.Post("/clear", s.handleClear)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// History exposes the conversation kept by the server
func (s *Server) History() *History {
	return s.history
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("demo backend listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("demo backend shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
