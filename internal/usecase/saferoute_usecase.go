package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/saferoute-service/internal/cost"
	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/domain/repository"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/pkg/utils"
	"github.com/saferoute-service/internal/pkg/validator"
	"github.com/saferoute-service/internal/reweight"
	"github.com/saferoute-service/internal/routing"
	"github.com/saferoute-service/internal/spatial"
	"github.com/saferoute-service/internal/usecase/dto"
)

// Settings - параметры модели стоимости и перевзвешивания
type Settings struct {
	Place   string
	Weights cost.Weights
	MinCost float64
	Radius  float64
	Workers int
}

type Option func(*SafeRouteUseCase)

// WithClock подменяет источник времени (для режима auto)
func WithClock(now func() time.Time) Option {
	return func(uc *SafeRouteUseCase) {
		uc.now = now
	}
}

// SafeRouteUseCase держит базовый граф, индекс слоев и взвешенные варианты.
// Варианты после построения не изменяются, поэтому читаются без копирования.
type SafeRouteUseCase struct {
	baseRepo    repository.BaseGraphRepository
	fetcher     repository.GraphFetcher
	featureRepo repository.FeatureRepository
	derivedRepo repository.DerivedGraphRepository
	settings    Settings
	logger      *zap.Logger
	now         func() time.Time

	mu          sync.RWMutex
	base        *domain.StreetGraph
	layers      []*domain.FeatureLayer
	index       *spatial.Index
	engine      *reweight.Engine
	locator     *routing.Locator
	fingerprint string
	variants    map[domain.TimeMode]*domain.StreetGraph

	group singleflight.Group
}

// NewSafeRouteUseCase создает новый SafeRouteUseCase
func NewSafeRouteUseCase(
	baseRepo repository.BaseGraphRepository,
	fetcher repository.GraphFetcher,
	featureRepo repository.FeatureRepository,
	derivedRepo repository.DerivedGraphRepository,
	settings Settings,
	logger *zap.Logger,
	opts ...Option,
) *SafeRouteUseCase {
	if settings.MinCost <= 0 {
		settings.MinCost = cost.DefaultMinCost
	}
	if settings.Radius <= 0 {
		settings.Radius = spatial.DefaultRadius
	}

	uc := &SafeRouteUseCase{
		baseRepo:    baseRepo,
		fetcher:     fetcher,
		featureRepo: featureRepo,
		derivedRepo: derivedRepo,
		settings:    settings,
		logger:      logger,
		now:         time.Now,
		variants:    make(map[domain.TimeMode]*domain.StreetGraph),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// EnsureBaseGraph загружает базовый граф, а если его нет - скачивает и сохраняет
func (uc *SafeRouteUseCase) EnsureBaseGraph(ctx context.Context) (*domain.StreetGraph, error) {
	uc.mu.RLock()
	g := uc.base
	uc.mu.RUnlock()
	if g != nil {
		return g, nil
	}

	g, err := uc.baseRepo.Load(ctx)
	if err != nil {
		if !errors.Is(err, errors.ErrSerialization) {
			return nil, dataLoadError(err, "load base graph")
		}
		uc.logger.Warn("Stored base graph is unreadable, fetching again", zap.Error(err))
		g = nil
	}

	if g == nil {
		uc.logger.Info("Base graph not found, fetching", zap.String("place", uc.settings.Place))
		g, err = uc.fetcher.Fetch(ctx, uc.settings.Place)
		if err != nil {
			return nil, dataLoadError(err, fmt.Sprintf("fetch street network for %q", uc.settings.Place))
		}
		if err := uc.baseRepo.Save(ctx, g); err != nil {
			uc.logger.Warn("Failed to save base graph", zap.Error(err))
		}
	}

	if g.NodeCount() == 0 {
		return nil, errors.Wrap(errors.ErrDataLoad, nil, "base graph has no nodes")
	}

	uc.mu.Lock()
	if uc.base == nil {
		uc.base = g
		uc.locator = routing.NewLocator(g)
	}
	g = uc.base
	uc.mu.Unlock()

	uc.logger.Info("Base graph ready",
		zap.String("place", g.Place),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()))

	return g, nil
}

// LoadLayers загружает пять слоев и строит пространственный индекс
func (uc *SafeRouteUseCase) LoadLayers(ctx context.Context) (*spatial.Index, error) {
	uc.mu.RLock()
	ix := uc.index
	uc.mu.RUnlock()
	if ix != nil {
		return ix, nil
	}

	layers := make([]*domain.FeatureLayer, 0, len(domain.AllLayers))
	for _, name := range domain.AllLayers {
		fl, err := uc.featureRepo.Load(ctx, name)
		if err != nil {
			return nil, dataLoadError(err, fmt.Sprintf("load %s layer", name))
		}
		if fl == nil {
			return nil, errors.Wrap(errors.ErrDataLoad, nil, fmt.Sprintf("%s layer is missing", name))
		}
		layers = append(layers, fl)
	}

	ix = spatial.NewIndex(layers, uc.settings.Radius)
	for _, name := range domain.AllLayers {
		if l := ix.Layer(name); l != nil && l.Skipped() > 0 {
			uc.logger.Warn("Invalid points skipped",
				zap.String("layer", string(name)),
				zap.Int("skipped", l.Skipped()))
		}
	}

	model := cost.NewModel(ix, uc.settings.Weights,
		cost.WithMinCost(uc.settings.MinCost),
		cost.WithRadius(uc.settings.Radius))

	uc.mu.Lock()
	if uc.index == nil {
		uc.layers = layers
		uc.index = ix
		uc.engine = reweight.NewEngine(model, uc.settings.Workers, uc.logger)
	}
	ix = uc.index
	uc.mu.Unlock()

	uc.logger.Info("Feature layers loaded", zap.Any("sizes", ix.Sizes()))
	return ix, nil
}

// Prepare гарантирует наличие базового графа, слоев и обоих вариантов
func (uc *SafeRouteUseCase) Prepare(ctx context.Context) error {
	if _, err := uc.inputs(ctx); err != nil {
		return err
	}
	for _, mode := range domain.AllModes {
		if _, err := uc.Variant(ctx, mode); err != nil {
			return err
		}
	}
	return nil
}

// Variant возвращает взвешенный граф для режима.
// Порядок: память, затем хранилище (по отпечатку), иначе расчет и сохранение.
func (uc *SafeRouteUseCase) Variant(ctx context.Context, mode domain.TimeMode) (*domain.StreetGraph, error) {
	if !mode.Valid() {
		return nil, errors.Wrap(errors.ErrValidation, nil, fmt.Sprintf("unknown time mode %q", mode))
	}

	uc.mu.RLock()
	g := uc.variants[mode]
	uc.mu.RUnlock()
	if g != nil {
		return g, nil
	}

	v, err, shared := uc.group.Do("variant:"+string(mode), func() (interface{}, error) {
		return uc.buildVariant(ctx, mode)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		uc.logger.Debug("Variant build shared", zap.String("mode", string(mode)))
	}
	return v.(*domain.StreetGraph), nil
}

func (uc *SafeRouteUseCase) buildVariant(ctx context.Context, mode domain.TimeMode) (*domain.StreetGraph, error) {
	uc.mu.RLock()
	g := uc.variants[mode]
	uc.mu.RUnlock()
	if g != nil {
		return g, nil
	}

	fp, err := uc.inputs(ctx)
	if err != nil {
		return nil, err
	}

	uc.mu.RLock()
	base, engine := uc.base, uc.engine
	uc.mu.RUnlock()

	key := domain.VariantKey{Mode: mode, Fingerprint: fp}
	if g := uc.loadVariant(ctx, key, base); g != nil {
		uc.storeVariant(mode, g)
		return g, nil
	}

	g, stats, err := engine.Reweight(ctx, base, mode)
	if err != nil {
		return nil, err
	}
	if stats.Clamped > 0 {
		uc.logger.Warn("Edge costs clamped to minimum",
			zap.String("mode", string(mode)),
			zap.Int("clamped", stats.Clamped),
			zap.Float64("min_cost", uc.settings.MinCost))
	}

	if err := uc.derivedRepo.Save(ctx, key, g); err != nil {
		uc.logger.Warn("Failed to save derived graph", zap.String("key", key.String()), zap.Error(err))
	}

	uc.storeVariant(mode, g)
	return g, nil
}

// loadVariant возвращает сохраненный вариант или nil, если его нужно пересчитать
func (uc *SafeRouteUseCase) loadVariant(ctx context.Context, key domain.VariantKey, base *domain.StreetGraph) *domain.StreetGraph {
	exists, err := uc.derivedRepo.Exists(ctx, key)
	if err != nil {
		uc.logger.Warn("Failed to check derived graph", zap.String("key", key.String()), zap.Error(err))
		return nil
	}
	if !exists {
		uc.logger.Info("Derived graph not cached", zap.String("key", key.String()))
		return nil
	}

	g, err := uc.derivedRepo.Load(ctx, key)
	if err != nil {
		// поврежденный кэш не фатален: вариант будет пересчитан
		uc.logger.Warn("Derived graph unreadable, recomputing",
			zap.String("key", key.String()),
			zap.Error(err))
		return nil
	}
	if g.NodeCount() != base.NodeCount() || g.EdgeCount() != base.EdgeCount() {
		uc.logger.Warn("Derived graph does not match base graph, recomputing",
			zap.String("key", key.String()),
			zap.Int("edges", g.EdgeCount()),
			zap.Int("base_edges", base.EdgeCount()))
		return nil
	}

	uc.logger.Info("Derived graph loaded from cache", zap.String("key", key.String()))
	return g
}

func (uc *SafeRouteUseCase) storeVariant(mode domain.TimeMode, g *domain.StreetGraph) {
	uc.mu.Lock()
	uc.variants[mode] = g
	uc.mu.Unlock()
}

// inputs готовит базовый граф и слои и возвращает отпечаток
func (uc *SafeRouteUseCase) inputs(ctx context.Context) (string, error) {
	uc.mu.RLock()
	fp := uc.fingerprint
	uc.mu.RUnlock()
	if fp != "" {
		return fp, nil
	}

	v, err, _ := uc.group.Do("inputs", func() (interface{}, error) {
		base, err := uc.EnsureBaseGraph(ctx)
		if err != nil {
			return "", err
		}
		if _, err := uc.LoadLayers(ctx); err != nil {
			return "", err
		}

		uc.mu.Lock()
		defer uc.mu.Unlock()
		if uc.fingerprint == "" {
			uc.fingerprint = Fingerprint(base, uc.layers, uc.settings)
			uc.logger.Info("Graph fingerprint computed", zap.String("fingerprint", uc.fingerprint))
		}
		return uc.fingerprint, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// CurrentMode - режим для текущего часа
func (uc *SafeRouteUseCase) CurrentMode() domain.TimeMode {
	return cost.ModeAt(uc.now())
}

// FindSafestRoute ищет самый безопасный маршрут между двумя точками
func (uc *SafeRouteUseCase) FindSafestRoute(ctx context.Context, req dto.RouteRequest) (*dto.RouteResponse, error) {
	if err := validator.Validate(req); err != nil {
		return nil, errors.Wrap(errors.ErrValidation, err, "").
			WithDetails(validator.Fields(err))
	}

	mode, err := cost.ResolveMode(req.Mode, uc.now())
	if err != nil {
		return nil, err
	}

	g, err := uc.Variant(ctx, mode)
	if err != nil {
		return nil, err
	}

	uc.mu.RLock()
	locator, fp := uc.locator, uc.fingerprint
	uc.mu.RUnlock()

	start := domain.Coordinate{Lat: req.Start.Lat, Lon: req.Start.Lon}
	end := domain.Coordinate{Lat: req.End.Lat, Lon: req.End.Lon}

	src, err := locator.Nearest(start)
	if err != nil {
		return nil, err
	}
	dst, err := locator.Nearest(end)
	if err != nil {
		return nil, err
	}

	route, err := routing.ShortestPath(g, src, dst)
	if err != nil {
		return nil, err
	}
	route.Mode = mode

	resp := &dto.RouteResponse{
		RequestID:        uuid.New().String(),
		Place:            g.Place,
		Mode:             mode,
		Start:            start,
		End:              end,
		StartNode:        src,
		EndNode:          dst,
		Nodes:            route.Nodes,
		Coordinates:      routing.ToCoordinates(g, route),
		TotalCost:        route.Cost,
		DistanceM:        routing.PathLength(g, route),
		DirectDistanceKm: utils.HaversineDistance(start.Lat, start.Lon, end.Lat, end.Lon),
		Fingerprint:      fp,
	}

	uc.logger.Info("Safest route found",
		zap.String("request_id", resp.RequestID),
		zap.String("mode", string(mode)),
		zap.Int64("from", src),
		zap.Int64("to", dst),
		zap.Int("nodes", len(route.Nodes)),
		zap.Float64("cost", route.Cost),
		zap.Float64("distance_m", resp.DistanceM))

	return resp, nil
}

// Status возвращает состояние графа без побочных эффектов
func (uc *SafeRouteUseCase) Status(ctx context.Context) *dto.GraphStatusResponse {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	status := &dto.GraphStatusResponse{
		Place:       uc.settings.Place,
		Fingerprint: uc.fingerprint,
		Variants:    make([]string, 0, len(uc.variants)),
		CurrentMode: string(cost.ModeAt(uc.now())),
	}
	if uc.base != nil {
		status.Source = uc.base.Source
		status.Nodes = uc.base.NodeCount()
		status.Edges = uc.base.EdgeCount()
	}
	if uc.index != nil {
		status.Layers = make(map[string]int, len(domain.AllLayers))
		for name, size := range uc.index.Sizes() {
			status.Layers[string(name)] = size
		}
	}
	for mode := range uc.variants {
		status.Variants = append(status.Variants, string(mode))
	}
	sort.Strings(status.Variants)
	status.Ready = len(uc.variants) == len(domain.AllModes)

	return status
}

func dataLoadError(err error, message string) error {
	if appErr, ok := errors.As(err); ok && appErr.Code == errors.CodeDataLoad {
		return err
	}
	return errors.Wrap(errors.ErrDataLoad, err, message)
}
