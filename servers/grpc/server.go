package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcAdapter "github.com/gruzdev-dev/codex-recipes/adapters/grpc"
	"github.com/gruzdev-dev/codex-recipes/configs"
)

// Server exposes the standard gRPC health service for the recipes backend.
type Server struct {
	cfg        *configs.Config
	grpcServer *grpc.Server
	health     *health.Server
	log        logrus.FieldLogger
}

func NewServer(cfg *configs.Config, log logrus.FieldLogger) *Server {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(grpcAdapter.LoggingInterceptor(log)),
	}

	s := grpc.NewServer(opts...)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	return &Server{
		cfg:        cfg,
		grpcServer: s,
		health:     hs,
		log:        log,
	}
}

// MarkServing flips the overall health status once dependencies are ready.
func (s *Server) MarkServing() {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%s", s.cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.log.Infof("gRPC server is running on %s", addr)
	errCh := make(chan error, 1)
	go func() {
		if err := s.grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		return fmt.Errorf("gRPC server error: %w", err)
	}
}

func (s *Server) Stop() {
	s.log.Info("stopping gRPC server")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
