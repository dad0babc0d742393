package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/seu-repo/jarvis/internal/observability/telemetry"
)

// UnaryMetricsInterceptor counts calls and observes their duration per method.
func UnaryMetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		defer observeDuration(info.FullMethod, time.Now())
		resp, err := handler(ctx, req)
		recordStatus(info.FullMethod, err)
		return resp, err
	}
}

// StreamMetricsInterceptor does the same for streams such as health Watch.
// The duration covers the whole stream.
func StreamMetricsInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		defer observeDuration(info.FullMethod, time.Now())
		err := handler(srv, ss)
		recordStatus(info.FullMethod, err)
		return err
	}
}

func observeDuration(method string, start time.Time) {
	telemetry.GRPCRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func recordStatus(method string, err error) {
	telemetry.GRPCRequestsTotal.WithLabelValues(method, status.Code(err).String()).Inc()
}
