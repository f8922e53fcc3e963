package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jdesfossez/gt1000ctl/internal/config"
	"github.com/jdesfossez/gt1000ctl/internal/facade"
	"github.com/jdesfossez/gt1000ctl/internal/logger"
)

// Server provides the HTTP facade over a Facade: get_state, toggle,
// set_value, set_type, list_types, plus liveness/readiness probes.
//
// The server supports graceful shutdown with a bounded timeout.
type Server struct {
	server       *http.Server
	config       config.APIConfig
	shutdownOnce sync.Once
}

// NewServer creates a new API HTTP server wrapping f. The server is created
// in a stopped state; call Start to begin serving requests.
func NewServer(cfg config.APIConfig, f *facade.Facade) *Server {
	router := NewRouter(f)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: server,
		config: cfg,
	}
}

// Start starts the API HTTP server and blocks until ctx is cancelled or the
// server fails to serve. On cancellation it performs a bounded graceful
// shutdown and returns Stop's result; on a serve failure it returns that
// error.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("api server shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("api server failed: %w", err)
	}
}

// Stop initiates graceful shutdown. Safe to call multiple times and
// concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("api server shutdown initiated")
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("api server shutdown error: %w", err)
			logger.Error("api server shutdown error", "error", err)
			return
		}
		logger.Info("api server stopped gracefully")
	})
	return shutdownErr
}

// Port returns the TCP port the server is configured to listen on.
func (s *Server) Port() int {
	return s.config.Port
}
