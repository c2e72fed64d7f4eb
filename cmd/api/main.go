package main

// @title SafeRoute Service API
// @version 1.0.0
// @description Сервис безопасных пешеходных маршрутов по данным OpenStreetMap и слоям безопасности.
// @description
// @description Основные возможности:
// @description - Поиск самого безопасного маршрута (день/ночь/auto)
// @description - HTML карта маршрута
// @description - Состояние графа и прогретых вариантов

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/saferoute-service/docs"
	"github.com/saferoute-service/internal/bootstrap"
	"github.com/saferoute-service/internal/config"
	httpDelivery "github.com/saferoute-service/internal/delivery/http"
	"github.com/saferoute-service/internal/delivery/http/handler"
	"github.com/saferoute-service/internal/pkg/logger"
	"github.com/saferoute-service/internal/render"
	"github.com/saferoute-service/internal/worker"
	"github.com/saferoute-service/internal/worker/warmup"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting SafeRoute Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("place", cfg.Graph.Place),
		zap.String("cache_backend", cfg.Graph.CacheBackend),
		zap.String("features_source", cfg.Features.Source),
	)

	// 3. Wire repositories and use case
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	// 4. Health checks
	deps := make(map[string]handler.Pinger)
	if components.DB != nil {
		deps["postgres"] = components.DB
	}
	if components.Redis != nil {
		deps["redis"] = components.Redis
	}

	healthCtx, healthCancel := context.WithTimeout(ctx, 5*time.Second)
	for name, dep := range deps {
		if err := dep.Health(healthCtx); err != nil {
			log.Fatal("Health check failed", zap.String("dependency", name), zap.Error(err))
		}
	}
	healthCancel()

	log.Info("All connections healthy", zap.Int("dependencies", len(deps)))

	// 5. Background warmup of day/night variants
	workerManager := worker.NewWorkerManager(log)
	if cfg.Worker.Enabled {
		workerManager.Register(warmup.NewVariantWorker(components.UseCase, cfg.Worker.WarmupInterval, log))
		if err := workerManager.Start(ctx); err != nil {
			log.Fatal("Failed to start workers", zap.Error(err))
		}
	} else {
		log.Info("Warmup worker disabled, variants are built on first request")
	}

	// 6. Initialize HTTP Handlers
	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		log.Fatal("Failed to initialize map renderer", zap.Error(err))
	}

	routeHandler := handler.NewRouteHandler(components.UseCase, renderer, log)
	healthHandler := handler.NewHealthHandler(deps)

	log.Info("HTTP handlers initialized")

	// 7. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, routeHandler, healthHandler)

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	cancel()
	if cfg.Worker.Enabled {
		if err := workerManager.Stop(); err != nil {
			log.Error("Error stopping workers", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
