package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	handlers "github.com/nexusmerchants/orderforms-stripe/internal/adapter/handler/http"
	"github.com/nexusmerchants/orderforms-stripe/internal/app"
	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	grpcServer "github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/grpc"
	httpServer "github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/http"
	"github.com/nexusmerchants/orderforms-stripe/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting customer portal",
		zap.String("service", cfg.Service.Name),
		zap.String("version", cfg.Service.Version),
		zap.String("environment", cfg.Service.Environment),
	)

	container, err := app.New(cfg, zapLogger, app.Options{Migrate: true})
	if err != nil {
		zapLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer container.Close()

	// Initialize servers
	httpSrv := httpServer.NewServer(cfg, zapLogger, httpServer.Handlers{
		Portal:   handlers.NewPortalHandler(zapLogger, container.Resolver, container.Data, container.Mutations),
		Internal: handlers.NewInternalHandler(zapLogger, container.Mutations),
		Gatherer: container.Registry,
	})
	grpcSrv := grpcServer.NewServer(cfg, zapLogger, container.Gateway != nil)

	errCh := make(chan error, 2)

	// Start servers
	if grpcSrv.Enabled() {
		go func() {
			if err := grpcSrv.Start(); err != nil {
				errCh <- err
			}
		}()
	}

	go func() {
		if err := httpSrv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		zapLogger.Error("Server failed", zap.Error(err))
	}

	zapLogger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if grpcSrv.Enabled() {
		if err := grpcSrv.Shutdown(ctx); err != nil {
			zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
		}
	}

	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}
