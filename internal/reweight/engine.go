package reweight

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saferoute-service/internal/cost"
	"github.com/saferoute-service/internal/domain"
)

const minChunkSize = 256

// Stats - итоги одного прохода перевзвешивания
type Stats struct {
	Mode     domain.TimeMode `json:"mode"`
	Total    int             `json:"total"`
	Weighted int             `json:"weighted"`
	Skipped  int             `json:"skipped"`
	Clamped  int             `json:"clamped"`
	Elapsed  time.Duration   `json:"elapsed"`
}

func (s *Stats) add(o Stats) {
	s.Weighted += o.Weighted
	s.Skipped += o.Skipped
	s.Clamped += o.Clamped
}

// Engine применяет модель стоимости ко всем ребрам графа.
// Каждый воркер пишет только в свой диапазон результата.
type Engine struct {
	model   *cost.Model
	workers int
	logger  *zap.Logger
}

func NewEngine(model *cost.Model, workers int, logger *zap.Logger) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{
		model:   model,
		workers: workers,
		logger:  logger,
	}
}

func (e *Engine) Model() *cost.Model { return e.model }

// Costs возвращает новый вес для каждого ребра base, не изменяя граф.
// Ребра без геометрии или длины сохраняют текущий вес.
func (e *Engine) Costs(ctx context.Context, base *domain.StreetGraph, night bool) ([]float64, Stats, error) {
	started := time.Now()
	n := len(base.Edges)
	costs := make([]float64, n)

	mode := domain.ModeDay
	if night {
		mode = domain.ModeNight
	}
	stats := Stats{Mode: mode, Total: n}
	if n == 0 {
		return costs, stats, nil
	}

	chunk := n / (e.workers * 8)
	if chunk < minChunkSize {
		chunk = minChunkSize
	}
	numChunks := (n + chunk - 1) / chunk
	partial := make([]Stats, numChunks)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for c := 0; c < numChunks; c++ {
		c := c // per-iteration copy (go.mod targets go 1.21 loop semantics)
		start := c * chunk
		end := start + chunk
		if end > n {
			end = n
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var s Stats
			for i := start; i < end; i++ {
				edge := base.Edges[i]
				d, ok := e.model.EdgeCost(edge, night)
				if !ok {
					costs[i] = edge.Weight
					s.Skipped++
					continue
				}
				costs[i] = d.Cost
				s.Weighted++
				if d.Clamped {
					s.Clamped++
				}
			}
			partial[c] = s
			e.progress(mode, done.Add(int64(end-start)), int64(end-start), int64(n))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, stats, fmt.Errorf("reweight %s graph: %w", mode, err)
	}

	for _, s := range partial {
		stats.add(s)
	}
	stats.Elapsed = time.Since(started)
	return costs, stats, nil
}

// Reweight строит новый граф с весами для режима mode. base не меняется.
func (e *Engine) Reweight(ctx context.Context, base *domain.StreetGraph, mode domain.TimeMode) (*domain.StreetGraph, Stats, error) {
	costs, stats, err := e.Costs(ctx, base, mode.IsNight())
	if err != nil {
		return nil, stats, err
	}

	derived := base.Clone()
	for i := range derived.Edges {
		derived.Edges[i].Weight = costs[i]
	}

	e.logger.Info("Graph reweighted",
		zap.String("mode", string(mode)),
		zap.Int("edges", stats.Total),
		zap.Int("weighted", stats.Weighted),
		zap.Int("skipped", stats.Skipped),
		zap.Int("clamped", stats.Clamped),
		zap.Duration("elapsed", stats.Elapsed),
	)
	return derived, stats, nil
}

// ReweightAll строит дневной и ночной варианты как независимые копии
func (e *Engine) ReweightAll(ctx context.Context, base *domain.StreetGraph) (map[domain.TimeMode]*domain.StreetGraph, error) {
	variants := make(map[domain.TimeMode]*domain.StreetGraph, len(domain.AllModes))
	for _, mode := range domain.AllModes {
		g, _, err := e.Reweight(ctx, base, mode)
		if err != nil {
			return nil, err
		}
		variants[mode] = g
	}
	return variants, nil
}

// progress пишет в лог при пересечении каждых 10%
func (e *Engine) progress(mode domain.TimeMode, done, step, total int64) {
	before := (done - step) * 10 / total
	after := done * 10 / total
	if after > before {
		e.logger.Debug("Reweighting progress",
			zap.String("mode", string(mode)),
			zap.Int64("done", done),
			zap.Int64("total", total),
			zap.Int64("percent", after*10),
		)
	}
}
