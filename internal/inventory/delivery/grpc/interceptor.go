package grpc

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tair/stock-ledger/pkg/logger"
)

var (
	grpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_ledger_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "code"},
	)

	grpcLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stock_ledger_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(grpcRequests, grpcLatency)
}

// LoggingInterceptor logs gRPC requests
func LoggingInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	duration := time.Since(start)
	event := logger.Debug(ctx)
	if err != nil {
		event = logger.Warn(ctx).Err(err)
	}
	event.
		Str("method", info.FullMethod).
		Dur("duration", duration).
		Msg("gRPC request completed")

	return resp, err
}

// StreamLoggingInterceptor logs streaming calls such as health Watch
func StreamLoggingInterceptor(
	srv interface{},
	ss grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	start := time.Now()
	err := handler(srv, ss)
	logger.Debug(ss.Context()).
		Str("method", info.FullMethod).
		Dur("duration", time.Since(start)).
		AnErr("error", err).
		Msg("gRPC stream closed")
	return err
}

// MetricsInterceptor counts requests by method and status code
func MetricsInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	grpcLatency.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	grpcRequests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	return resp, err
}

// RecoveryInterceptor turns a panic into codes.Internal
func RecoveryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx).
				Interface("panic", r).
				Str("method", info.FullMethod).
				Msg("gRPC panic recovered")
			err = status.Errorf(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}
