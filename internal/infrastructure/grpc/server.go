package grpc

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	"github.com/nexusmerchants/orderforms-stripe/pkg/logger"
)

// BillingService is the health service name reporting whether a billing gateway is configured
const BillingService = "billing"

// Server exposes the standard gRPC health service for orchestrators
type Server struct {
	config   *config.Config
	logger   *zap.Logger
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
}

// NewServer registers the health service. billingReady reports whether requests
// can reach the billing provider.
func NewServer(cfg *config.Config, log *zap.Logger, billingReady bool) *Server {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(logger.NewGrpcUnaryServerInterceptor(log)),
		grpc.ChainStreamInterceptor(logger.NewGrpcStreamServerInterceptor(log)),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	billing := healthpb.HealthCheckResponse_SERVING
	if !billingReady {
		billing = healthpb.HealthCheckResponse_NOT_SERVING
	}
	healthServer.SetServingStatus(BillingService, billing)

	return &Server{
		config: cfg,
		logger: log,
		server: server,
		health: healthServer,
	}
}

// Enabled reports whether a port is configured
func (s *Server) Enabled() bool {
	return s.config.Server.GRPC.Port != 0
}

func (s *Server) Start() error {
	addr := s.config.Server.GRPC.Addr()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.logger.Info("Starting gRPC server", zap.String("address", addr))
	return s.Serve(listener)
}

// Serve accepts connections on an existing listener
func (s *Server) Serve(listener net.Listener) error {
	s.listener = listener
	return s.server.Serve(listener)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.server.Stop()
	}
	return nil
}
