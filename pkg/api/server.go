package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/pkg/api/auth"
)

// Server provides an HTTP server for the REST API.
//
// The server supports graceful shutdown with configurable timeout.
type Server struct {
	server       *http.Server
	config       APIConfig
	shutdownOnce sync.Once

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new API HTTP server in a stopped state. The JWT
// service is built from config; deps.JWT is ignored.
func NewServer(config APIConfig, deps Deps) (*Server, error) {
	config.ApplyDefaults()

	jwtSecret := config.GetJWTSecret()
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters; set via %s env var or config", EnvAPISecret)
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:               jwtSecret,
		Issuer:               "centromed",
		AccessTokenDuration:  config.JWT.AccessTokenDuration,
		RefreshTokenDuration: config.JWT.RefreshTokenDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	deps.JWT = jwtService
	deps.RequestTimeout = config.RequestTimeout
	deps.MaxBodySize = config.MaxBodySize

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      NewRouter(deps),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{server: server, config: config}, nil
}

// Start serves until ctx is cancelled, then shuts down gracefully. It
// returns nil on graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("API server failed: %w", err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "port", s.Port())
		logger.Debug("API endpoints available",
			"health", fmt.Sprintf("http://localhost:%d/health", s.Port()),
			"shards", fmt.Sprintf("http://localhost:%d/health/shards", s.Port()),
		)

		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		// ctx is already cancelled; shutting down with it would be immediate.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop initiates graceful shutdown. It is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("API server shutdown initiated")
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", logger.KeyError, err.Error())
		} else {
			logger.Info("API server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server listens on. With port 0 configured
// it is the port picked by the OS once Start has begun listening.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return s.config.Port
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
