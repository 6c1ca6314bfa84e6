package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	_ "github.com/tair/stock-ledger/docs"
	"github.com/tair/stock-ledger/internal/inventory"
	httpDelivery "github.com/tair/stock-ledger/internal/inventory/delivery/http"
	"github.com/tair/stock-ledger/pkg/logger"
	"github.com/tair/stock-ledger/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "stock-ledger")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting stock ledger service")

	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    serviceName,
		JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}

	cfg := inventory.ConfigFromEnv()

	// Initialize the service with Wire DI
	app, cleanup, err := inventory.InitializeApp(cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("store_driver", cfg.StoreDriver).Msg("Failed to initialize service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The feed must be watching before the first request can commit
	if err := app.Hub.Start(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start change feed")
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return serveHTTP(ctx, app, getEnv("HTTP_PORT", "8082"), getEnv("JWT_SECRET", ""))
	})
	g.Go(func() error {
		return app.GRPC.Serve(ctx, getEnv("GRPC_PORT", "9092"))
	})
	g.Go(func() error {
		return app.Monitor.Run(ctx)
	})
	if app.Consumer != nil {
		g.Go(func() error {
			return app.Consumer.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Logger.Error().Err(err).Msg("Service stopped with error")
	}

	logger.Logger.Info().Msg("Shutting down server...")
	cleanup()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to shut down tracer")
	}
}

func serveHTTP(ctx context.Context, app *inventory.App, port, jwtSecret string) error {
	router := mux.NewRouter()

	middlewareConfig := httpDelivery.DefaultMiddlewareConfig(jwtSecret)
	httpDelivery.RegisterMiddlewares(router, middlewareConfig)

	// Register routes
	app.Inventory.RegisterRoutes(router)
	app.Movements.RegisterRoutes(router)

	// Health check endpoint
	httpDelivery.RegisterHealthCheck(router, app.Checks)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	httpDelivery.RegisterSwaggerDocs(router)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpDelivery.SetupCORS(middlewareConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
		}
	}()

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Str("swagger", "/swagger/index.html").
		Msg("HTTP server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
