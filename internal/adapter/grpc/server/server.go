package server

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/seu-repo/jarvis/internal/adapter/grpc/interceptors"
	healthsvc "github.com/seu-repo/jarvis/internal/service/health"
)

// AssistantService is the name reported to health clients for the
// orchestrator and its dependencies.
const AssistantService = "jarvis.Assistant"

// Readiness is satisfied by *health.Service.
type Readiness interface {
	Ready(ctx context.Context) *healthsvc.ReadyResponse
}

type GRPCServer struct {
	server    *grpc.Server
	health    *health.Server
	readiness Readiness
	log       *zap.Logger
}

func NewGRPCServer(readiness Readiness, log *zap.Logger) *GRPCServer {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.UnaryLoggingInterceptor(log),
			interceptors.UnaryMetricsInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamLoggingInterceptor(log),
			interceptors.StreamMetricsInterceptor(),
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	// Enable reflection for debugging (e.g. grpcurl)
	reflection.Register(s)

	return &GRPCServer{
		server:    s,
		health:    hs,
		readiness: readiness,
		log:       log,
	}
}

// Refresh runs the readiness checks once and publishes the result.
func (s *GRPCServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if ready := s.readiness.Ready(ctx); !ready.Ready {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(AssistantService, status)
	return status
}

// WatchReadiness refreshes the health status every interval until ctx ends.
func (s *GRPCServer) WatchReadiness(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if status := s.Refresh(ctx); status != last {
				s.log.Info("gRPC health status changed",
					zap.String("from", last.String()),
					zap.String("to", status.String()),
				)
				last = status
			}
		}
	}
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
