// Package grpcserver exposes the standard gRPC health service so
// orchestrators can probe the bot alongside its HTTP gateway.
package grpcserver

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"jobmate/jobsearch-bot/internal/logging"
)

// ServiceName is the health entry reported for the conversation gateway.
const ServiceName = "jobsearch.Bot"

// Server wraps a grpc.Server carrying only the health service.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	logger *logging.Logger
}

// New returns a Server whose overall and per-service status start as NOT_SERVING.
func New(logger *logging.Logger) *Server {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &Server{srv: srv, health: hs, logger: logger}
}

// SetServing flips both health entries.
func (s *Server) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	s.logger.Debug("health status changed", "status", status.String())
}

// ListenAndServe binds addr and blocks until the server stops.
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Serve blocks serving on lis.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("grpc health listening", "addr", lis.Addr().String())
	return s.srv.Serve(lis)
}

// Shutdown reports NOT_SERVING, then stops gracefully. Open streams are
// cut when ctx expires first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.srv.Stop()
		return ctx.Err()
	}
}
