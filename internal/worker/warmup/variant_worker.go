package warmup

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/worker"
)

// Warmer - то, что воркер прогревает (SafeRouteUseCase)
type Warmer interface {
	Prepare(ctx context.Context) error
	Variant(ctx context.Context, mode domain.TimeMode) (*domain.StreetGraph, error)
	CurrentMode() domain.TimeMode
}

// VariantWorker готовит оба варианта графа при старте и следит за сменой дня и ночи.
// Если подготовка не удалась, она повторяется на каждом тике.
type VariantWorker struct {
	*worker.BaseWorker
	warmer   Warmer
	interval time.Duration

	ready    bool
	lastMode domain.TimeMode
}

// NewVariantWorker создает новый VariantWorker
func NewVariantWorker(warmer Warmer, interval time.Duration, logger *zap.Logger) *VariantWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &VariantWorker{
		BaseWorker: worker.NewBaseWorker("variant-warmup", logger),
		warmer:     warmer,
		interval:   interval,
	}
}

// Start запускает воркер
func (w *VariantWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting VariantWorker", zap.Duration("interval", w.interval))

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *VariantWorker) tick(ctx context.Context) {
	logger := w.Logger()

	if !w.ready {
		started := time.Now()
		if err := w.warmer.Prepare(ctx); err != nil {
			logger.Error("Failed to prepare graph variants", zap.Error(err))
			return
		}
		w.ready = true
		logger.Info("Graph variants prepared", zap.Duration("elapsed", time.Since(started)))
	}

	mode := w.warmer.CurrentMode()
	if mode == w.lastMode {
		return
	}

	if _, err := w.warmer.Variant(ctx, mode); err != nil {
		logger.Error("Failed to warm variant", zap.String("mode", string(mode)), zap.Error(err))
		return
	}
	if w.lastMode != "" {
		logger.Info("Time mode switched",
			zap.String("from", string(w.lastMode)),
			zap.String("to", string(mode)))
	}
	w.lastMode = mode
}
