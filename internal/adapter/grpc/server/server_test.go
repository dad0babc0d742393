package server

import (
	"context"
	"net"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	healthsvc "github.com/seu-repo/jarvis/internal/service/health"
)

type stubReadiness struct {
	ready bool
}

func (s *stubReadiness) Ready(ctx context.Context) *healthsvc.ReadyResponse {
	return &healthsvc.ReadyResponse{Ready: s.ready}
}

func dial(t *testing.T, srv *GRPCServer) healthpb.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func TestHealthCheck_FollowsReadiness(t *testing.T) {
	tests := []struct {
		name  string
		ready bool
		want  healthpb.HealthCheckResponse_ServingStatus
	}{
		{"ready", true, healthpb.HealthCheckResponse_SERVING},
		{"not ready", false, healthpb.HealthCheckResponse_NOT_SERVING},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			srv := NewGRPCServer(&stubReadiness{ready: tt.ready}, zap.NewNop())
			client := dial(t, srv)
			srv.Refresh(context.Background())

			// Act
			resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: AssistantService})

			// Assert
			if err != nil {
				t.Fatalf("Check failed: %v", err)
			}
			if resp.Status != tt.want {
				t.Errorf("expected %s, got %s", tt.want, resp.Status)
			}
		})
	}
}
