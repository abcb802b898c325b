package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/centromed/internal/logger"
)

// Server exposes the registry on /metrics.
type Server struct {
	server       *http.Server
	shutdownOnce sync.Once
}

// NewServer creates a metrics server on port. InitRegistry must have been called.
func NewServer(port int) (*Server, error) {
	reg := GetRegistry()
	if reg == nil {
		return nil, errors.New("metrics registry not initialized")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Start serves until ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Metrics server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.Stop(context.Background())
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("metrics server error: %w", err)
		}
		return nil
	}
}

// Stop shuts the server down. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		err = s.server.Shutdown(ctx)
	})
	return err
}
