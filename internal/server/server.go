package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/leslieo2/agent-service/internal/config"
	"github.com/leslieo2/agent-service/internal/constants"
	"github.com/leslieo2/agent-service/internal/contract"
	"github.com/leslieo2/agent-service/internal/health"
	"github.com/leslieo2/agent-service/internal/observability"
)

type Server struct {
	config   *config.Config
	server   *http.Server
	reporter health.Reporter

	// Observability
	logger *observability.Logger
	tracer *observability.Tracer
}

// Option customizes a Server built by New.
type Option func(*Server)

// WithReporter replaces the default StaticReporter.
func WithReporter(r health.Reporter) Option {
	return func(s *Server) {
		s.reporter = r
	}
}

// WithLogger replaces the logger built from configuration.
func WithLogger(l *observability.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{config: cfg}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		logger, err := observability.NewLogger(cfg.Observability.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		s.logger = logger
	}

	tracingConfig := cfg.Observability.Tracing
	if tracingConfig.ServiceName == "" {
		tracingConfig.ServiceName = cfg.Service.Name
	}
	tracer, err := observability.NewTracer(tracingConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracer = tracer

	if s.reporter == nil {
		s.reporter = health.NewReporter(health.Identity{ServiceName: cfg.Service.Name})
	}

	if err := s.selfCheck(); err != nil {
		return nil, err
	}

	return s, nil
}

// selfCheck renders one health document and validates it against the
// embedded OpenAPI contract, so a misconfigured reporter fails at start.
func (s *Server) selfCheck() error {
	c, err := contract.Load()
	if err != nil {
		return fmt.Errorf("failed to load health contract: %w", err)
	}

	body, err := json.Marshal(s.reporter.GetHealth())
	if err != nil {
		return fmt.Errorf("failed to serialize health status: %w", err)
	}

	if err := c.ValidateHealth(body); err != nil {
		return fmt.Errorf("health self-check failed: %w", err)
	}
	return nil
}

// Logger exposes the server logger so callers can adjust its level.
func (s *Server) Logger() *observability.Logger {
	return s.logger
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+constants.PathHealth, s.healthHandler)

	return s.applyMiddleware(mux)
}

// Run binds the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled, then
// shuts down gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.config.Server.ReadTimeout,
		ReadHeaderTimeout: s.config.Server.ReadTimeout,
		WriteTimeout:      s.config.Server.WriteTimeout,
		IdleTimeout:       s.config.Server.IdleTimeout,
		MaxHeaderBytes:    constants.ServerMaxHeaderBytes,
	}

	s.logger.Info("Starting server",
		zap.String("addr", listener.Addr().String()),
		zap.String("service", s.config.Service.Name),
		zap.Bool("tracing", s.tracer.Enabled()),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed", zap.Error(err))
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Failed to shutdown server", zap.Error(err))
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if err := s.tracer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Failed to shutdown tracer", zap.Error(err))
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		errs = append(errs, err)
	}

	s.logger.Info("Server stopped", zap.Duration("shutdown_timeout", s.config.Server.ShutdownTimeout))
	return errors.Join(errs...)
}
