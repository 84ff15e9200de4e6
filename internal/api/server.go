package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/embedstack/wvtriage/internal/config"
)

// Server wraps the HTTP listener and lifecycle helpers for serve mode.
type Server struct {
	cfg        config.ServerConfig
	httpServer *http.Server
	listener   net.Listener
}

// NewServer constructs an HTTP server bound to the configured address
// with the triage API routes registered.
func NewServer(cfg config.ServerConfig, handlers *Handlers) (*Server, error) {
	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Address, err)
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", handlers.Health).Methods(http.MethodGet)
	apiV1 := router.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/analyze", handlers.Analyze).Methods(http.MethodPost)
	apiV1.HandleFunc("/reports", handlers.ListReports).Methods(http.MethodGet)
	apiV1.HandleFunc("/reports/{id}", handlers.GetReport).Methods(http.MethodGet)
	apiV1.HandleFunc("/patterns", handlers.Patterns).Methods(http.MethodGet)

	return &Server{
		cfg:      cfg,
		listener: lis,
		httpServer: &http.Server{
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}, nil
}

// Start serves requests until Shutdown is invoked.
func (s *Server) Start() error {
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown attempts a graceful shutdown, closing outright when the
// context expires first.
func (s *Server) Shutdown(ctx context.Context) {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.httpServer.Close()
	}
}

// Address exposes the bound listener address (useful for tests).
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
