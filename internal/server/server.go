// Package server exposes the convolution engine over a small JSON HTTP API.
//
// Endpoints:
//   - POST /v1/convolve: convolve a signal with a filter.
//   - GET /health: liveness probe.
//   - GET /metrics: Prometheus exposition.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/kdeconv/internal/config"
	apperrors "github.com/agbru/kdeconv/internal/errors"
	"github.com/agbru/kdeconv/internal/filterconv"
	"github.com/agbru/kdeconv/internal/logging"
)

// Server is the HTTP front end of a filterconv.Convolution.
type Server struct {
	conv           *filterconv.Convolution
	nonNegative    *filterconv.NonNegative
	cfg            config.AppConfig
	httpServer     *http.Server
	logger         logging.Logger
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts

	ready chan struct{}
	addr  string
}

// NewServer creates a Server convolving with conv.
//
// Parameters:
//   - conv: The convolution facade serving requests.
//   - cfg: The application configuration (port).
//   - opts: Optional functional options.
//
// Returns:
//   - *Server: The initialized server.
//   - error: A missing-argument error if conv is nil.
func NewServer(conv *filterconv.Convolution, cfg config.AppConfig, opts ...Option) (*Server, error) {
	if conv == nil {
		return nil, apperrors.NewMissingArgumentError("convolution")
	}
	nn, err := filterconv.NewNonNegative(conv)
	if err != nil {
		return nil, err
	}
	s := &Server{
		conv:           conv,
		nonNegative:    nn,
		cfg:            cfg,
		logger:         logging.NewLogger(os.Stdout, "server"),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
		ready:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = NewRateLimiter(DefaultRateLimiterConfig())
	}

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.Handler(),
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}
	return s, nil
}

// Handler returns the request multiplexer with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/convolve", s.wrapWithMiddleware("/v1/convolve", s.handleConvolve))
	mux.HandleFunc("/health", s.wrapWithMiddleware("/health", s.handleHealth))
	mux.HandleFunc("/metrics", s.wrapWithMiddleware("/metrics", s.handleMetrics))
	return mux
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound listen address. It is valid after Ready is closed.
func (s *Server) Addr() string { return s.addr }

// Start listens on the configured port and serves until ctx is canceled,
// then shuts down gracefully within the shutdown timeout.
//
// Returns:
//   - error: A ServerError if the server cannot listen or fails while
//     serving; nil after a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	defer s.rateLimiter.Stop()

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return apperrors.NewServerError("server failed to start", err)
	}
	s.addr = ln.Addr().String()
	close(s.ready)

	s.logger.Info("server started",
		logging.String("addr", s.addr),
		logging.String("engine", s.cfg.Engine),
		logging.Int("min_filter_effective", s.conv.Thresholds().MinFilterForEffective),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return apperrors.NewServerError("server stopped unexpectedly", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutdown requested, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return apperrors.NewServerError("failed to gracefully shutdown server", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
