package grpcapi

import (
	"crypto/tls"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/feast-serving/engine/internal/config"
	"github.com/feast-serving/engine/internal/featurestore"
	"github.com/feast-serving/engine/pkg/logger"
)

// Server wraps a *grpc.Server bound to a listener, the gRPC analogue of
// httpapi.Server.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	addr       string
	logger     logger.Logger
}

// NewServer builds the gRPC server and registers the serving service.
func NewServer(cfg config.ServerConfig, store *featurestore.FeatureStore, log logger.Logger) (*Server, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpcapi: listening on %s: %w", addr, err)
	}

	var opts []grpc.ServerOption
	if cfg.TLS.Enabled {
		creds, err := loadTLSCredentials(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			lis.Close()
			return nil, fmt.Errorf("grpcapi: loading TLS credentials: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}

	grpcServer := grpc.NewServer(opts...)
	RegisterServingServiceServer(grpcServer, NewFeastGrpcService(store))

	return &Server{grpcServer: grpcServer, listener: lis, addr: addr, logger: log}, nil
}

func loadTLSCredentials(certFile, keyFile string) (credentials.TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(&tls.Config{Certificates: []tls.Certificate{cert}}), nil
}

// Start serves on the bound listener, blocking until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("starting gRPC server", logger.String("address", s.addr))
	return s.grpcServer.Serve(s.listener)
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.logger.Info("stopping gRPC server")
	s.grpcServer.GracefulStop()
}

// Address returns the bound address.
func (s *Server) Address() string {
	return s.addr
}
