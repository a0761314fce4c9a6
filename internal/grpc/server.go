package grpcserver

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// TaskServiceName is the health service name that tracks the task listener.
const TaskServiceName = "taskTracker.TaskServer"

// Health serves the standard gRPC health protocol. The overall status is
// SERVING while the process is up; TaskServiceName follows the task listener.
type Health struct {
	srv    *grpc.Server
	status *health.Server
	lis    net.Listener
	logger *zap.Logger
}

// StartGRPC starts the health endpoint on addr. The task service starts out NOT_SERVING.
func StartGRPC(addr string, logger *zap.Logger) (*Health, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer(grpc.UnaryInterceptor(newUnaryLoggingInterceptor(logger)))
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(TaskServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc server stopped", zap.Error(err))
		}
	}()
	logger.Info("grpc health endpoint listening", zap.String("addr", lis.Addr().String()))

	return &Health{srv: srv, status: hs, lis: lis, logger: logger}, nil
}

// Addr returns the bound address.
func (h *Health) Addr() net.Addr {
	return h.lis.Addr()
}

// SetTaskServing reports the task listener state. It matches server.Options.OnStateChange.
func (h *Health) SetTaskServing(running bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if running {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.status.SetServingStatus(TaskServiceName, st)
}

// Shutdown marks every service NOT_SERVING and stops gracefully, forcing the
// stop if ctx expires first.
func (h *Health) Shutdown(ctx context.Context) error {
	h.status.Shutdown()
	done := make(chan struct{})
	go func() { h.srv.GracefulStop(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		h.srv.Stop()
		return ctx.Err()
	}
}

func newUnaryLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("grpc call",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}
