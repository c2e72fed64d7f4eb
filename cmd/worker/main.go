package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/saferoute-service/internal/bootstrap"
	"github.com/saferoute-service/internal/config"
	"github.com/saferoute-service/internal/pkg/logger"
	"github.com/saferoute-service/internal/worker"
	"github.com/saferoute-service/internal/worker/warmup"
)

// Отдельный процесс прогрева: строит day/night варианты в общем кэше (Redis или data dir),
// чтобы экземпляры API находили их по отпечатку и не считали сами.
func main() {
	// 1. Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Variant Warmup Worker")
	log.Info("Configuration loaded",
		zap.String("place", cfg.Graph.Place),
		zap.String("cache_backend", cfg.Graph.CacheBackend),
		zap.Duration("interval", cfg.Worker.WarmupInterval),
		zap.Int("reweight_workers", cfg.Reweight.Workers))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Wire repositories and use case
	components, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	// 4. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(warmup.NewVariantWorker(components.UseCase, cfg.Worker.WarmupInterval, log))

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// 5. Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	// Cancel context to stop workers
	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
