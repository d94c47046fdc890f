// Package httpapi exposes the feature store over HTTP, built the way
// internal/api/server.go builds the VM management server: a thin
// *http.Server wrapper around a *gin.Engine with graceful shutdown.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/feast-serving/engine/internal/config"
	"github.com/feast-serving/engine/pkg/logger"
)

// Server wraps a gin engine and the http.Server bound to it.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     config.ServerConfig
	logger     logger.Logger
}

// NewServer builds the HTTP server. The caller still needs to register
// routes via Router() or SetupRouter before calling Start.
func NewServer(cfg config.ServerConfig, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:           addr,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return &Server{router: router, httpServer: httpServer, config: cfg, logger: log}
}

// Router returns the gin engine for route registration.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the HTTP server, blocking until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		logger.String("address", s.httpServer.Addr),
		logger.Bool("tls", s.config.TLS.Enabled))

	if s.config.TLS.Enabled {
		return s.httpServer.ListenAndServeTLS(s.config.TLS.CertFile, s.config.TLS.KeyFile)
	}
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down gracefully within ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the bound address.
func (s *Server) Address() string {
	return s.httpServer.Addr
}
