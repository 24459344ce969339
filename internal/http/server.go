package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gagyebu/internal/log"
)

// Server wraps the standard http.Server with sane timeouts and graceful
// shutdown.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

func NewServer(addr string, handler *Handler, logger *log.Logger) *Server {
	httpLogger := logger.WithComponent(log.ComponentHTTP)
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      log.Middleware(httpLogger)(handler.Routes()),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: httpLogger,
	}
}

// Start blocks serving requests until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
