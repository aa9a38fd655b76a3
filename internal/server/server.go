package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/statushub/statushub/internal/logger"
	"github.com/statushub/statushub/internal/model"
)

// HTTPServer runs one statushub service over a pluggable listener.
type HTTPServer struct {
	httpServer *http.Server
	logger     *logger.Logger

	mu   sync.Mutex
	addr string
}

var _ model.Server = (*HTTPServer)(nil)

func NewHTTPServer(addr string, handler http.Handler, logger *logger.Logger) *HTTPServer {
	return &HTTPServer{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
		logger: logger,
	}
}

// Start binds through the security layer and serves until Stop. It blocks;
// run it on its own goroutine.
func (s *HTTPServer) Start(sl model.SecurityLayer) error {
	listener, err := sl.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	s.logger.Info("server: listening", "address", listener.Addr().String())

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires.
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Address reports the bound address, empty before Start.
func (s *HTTPServer) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}
