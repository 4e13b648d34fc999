package restapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"acuity_offchain_worker/internal/config"
	"acuity_offchain_worker/internal/logger"
	"acuity_offchain_worker/pkg/offchain"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	worker     offchain.Worker
	logger     logger.AppLogger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new instance of the REST API server.
func NewServer(worker offchain.Worker, appLogger logger.AppLogger, cfg *config.ServerConfig) (*Server, error) {
	if worker == nil {
		return nil, errors.New("worker cannot be nil for Server")
	}
	if appLogger == nil {
		return nil, errors.New("logger cannot be nil for Server")
	}
	if cfg == nil {
		return nil, errors.New("config cannot be nil for Server")
	}

	h, err := NewHTTPHandler(worker, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize handler: %w", err)
	}

	smux := setupRouter(h)
	limiter := newLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           withMetrics(withRateLimit(limiter, appLogger, smux)),
		ReadTimeout:       time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		ErrorLog:          appLogger.StdLogger(),
	}

	return &Server{
		httpServer: server,
		worker:     worker,
		logger:     appLogger,
	}, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Listen binds the TCP listener and announces the port.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return errors.New("server is already listening")
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln

	s.logger.Info(fmt.Sprintf("Acuity off-chain worker listening on port %s.", listenerPort(ln)))
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Start binds the listener if needed and serves until Shutdown is called.
func (s *Server) Start() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	if ln == nil {
		if err := s.Listen(); err != nil {
			s.logger.Error("HTTP server listen error", "error", err)
			return err
		}
		s.mu.Lock()
		ln = s.listener
		s.mu.Unlock()
	}

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("HTTP server Serve error", "error", err)
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}
	s.logger.Info("HTTP server stopped gracefully.")
	return nil
}

// setupRouter creates a new ServeMux and registers the single API route.
// Other paths get the mux's 404 and other methods on / get its 405.
func setupRouter(h *HTTPHandler) *http.ServeMux {
	smux := http.NewServeMux()
	smux.HandleFunc("GET /{$}", h.HandleRoot)
	return smux
}

func listenerPort(ln net.Listener) string {
	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		return fmt.Sprint(tcpAddr.Port)
	}
	_, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		return ln.Addr().String()
	}
	return port
}
