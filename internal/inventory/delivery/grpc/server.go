package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/tair/stock-ledger/pkg/health"
	"github.com/tair/stock-ledger/pkg/logger"
)

// ServiceName is the name reported by the health service for the ledger
const ServiceName = "stockledger.v1.StockLedger"

// Server exposes the standard gRPC health service. Its status follows the
// same dependency checks as the HTTP /health endpoint.
type Server struct {
	grpcServer *grpc.Server
	health     *grpchealth.Server
	checks     health.Checks
	interval   time.Duration
}

// NewServer creates a gRPC server with tracing, metrics and logging interceptors
func NewServer(checks health.Checks, interval time.Duration) *Server {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			MetricsInterceptor,
			LoggingInterceptor,
		),
		grpc.ChainStreamInterceptor(
			StreamLoggingInterceptor,
		),
	)

	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	// Register reflection service (for grpcurl and grpc tools)
	reflection.Register(grpcServer)

	return &Server{
		grpcServer: grpcServer,
		health:     hs,
		checks:     checks,
		interval:   interval,
	}
}

// Serve listens on port until ctx is cancelled, then stops gracefully
func (s *Server) Serve(ctx context.Context, port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", port, err)
	}
	return s.ServeListener(ctx, lis)
}

// ServeListener serves on an existing listener
func (s *Server) ServeListener(ctx context.Context, lis net.Listener) error {
	s.refresh(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
	}()

	logger.Logger.Info().
		Str("addr", lis.Addr().String()).
		Msg("gRPC server started")

	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("gRPC server failed: %w", err)
	}
	return nil
}

func (s *Server) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

// refresh runs the checks and publishes the result
func (s *Server) refresh(ctx context.Context) {
	res := s.checks.Run(ctx, s.interval/2)

	status := healthpb.HealthCheckResponse_SERVING
	if !res.Healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		for name, err := range res.Errors {
			if err != nil {
				logger.Logger.Warn().Err(err).Str("dependency", name).Msg("gRPC health check failed")
			}
		}
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
