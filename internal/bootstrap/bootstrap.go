// Package bootstrap собирает репозитории и use case из конфигурации.
// Используется и CLI, и HTTP API, и воркером прогрева.
package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/saferoute-service/internal/config"
	"github.com/saferoute-service/internal/cost"
	"github.com/saferoute-service/internal/domain/repository"
	"github.com/saferoute-service/internal/infrastructure/overpass"
	"github.com/saferoute-service/internal/pkg/utils"
	"github.com/saferoute-service/internal/repository/cache"
	"github.com/saferoute-service/internal/repository/file"
	"github.com/saferoute-service/internal/repository/geojson"
	"github.com/saferoute-service/internal/repository/postgres"
	"github.com/saferoute-service/internal/usecase"
)

// Components - собранное приложение. DB и Redis равны nil, если не используются
type Components struct {
	UseCase *usecase.SafeRouteUseCase
	DB      *postgres.DB
	Redis   *cache.Redis

	logger *zap.Logger
}

// New подключает хранилища согласно конфигурации и создает SafeRouteUseCase
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Components, error) {
	c := &Components{logger: log}

	baseRepo := file.NewBaseGraphStore(BaseGraphPath(cfg), log)

	var fetcher repository.GraphFetcher
	if cfg.Graph.NodeLinkFile != "" {
		log.Info("Using node-link graph file", zap.String("path", cfg.Graph.NodeLinkFile))
		fetcher = file.NewNodeLinkImporter(cfg.Graph.NodeLinkFile, log)
	} else {
		fetcher = overpass.NewClient(&cfg.Graph, log)
	}

	featureRepo, err := c.featureRepository(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	derivedRepo, err := c.derivedRepository(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.UseCase = usecase.NewSafeRouteUseCase(
		baseRepo,
		fetcher,
		featureRepo,
		derivedRepo,
		SettingsFromConfig(cfg),
		log,
	)

	return c, nil
}

// SettingsFromConfig переносит параметры модели стоимости в use case
func SettingsFromConfig(cfg *config.Config) usecase.Settings {
	return usecase.Settings{
		Place:   cfg.Graph.Place,
		Weights: cost.WeightsFromConfig(cfg.Cost),
		MinCost: cfg.Cost.MinCost,
		Radius:  cfg.Features.Radius,
		Workers: cfg.Reweight.Workers,
	}
}

// BaseGraphPath - файл базового графа для места
func BaseGraphPath(cfg *config.Config) string {
	return filepath.Join(cfg.Graph.DataDir, utils.Slug(cfg.Graph.Place)+"_"+cfg.Graph.BaseFile)
}

func (c *Components) featureRepository(ctx context.Context, cfg *config.Config) (repository.FeatureRepository, error) {
	switch cfg.Features.Source {
	case config.FeatureSourceGeoJSON:
		return geojson.NewFeatureRepository(cfg.Features.Dir, cfg.Features.Files, c.logger), nil
	case config.FeatureSourcePostGIS:
		db, err := c.database(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewFeatureRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown features source %q", cfg.Features.Source)
	}
}

func (c *Components) derivedRepository(cfg *config.Config) (repository.DerivedGraphRepository, error) {
	switch cfg.Graph.CacheBackend {
	case config.CacheBackendFile:
		return file.NewDerivedGraphStore(cfg.Graph.DataDir, cfg.Graph.Place, c.logger), nil
	case config.CacheBackendRedis:
		r, err := cache.NewRedis(&cfg.Redis, c.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.Redis = r
		return cache.NewGraphCache(r, cfg.Graph.Place, cfg.Graph.CacheTTL), nil
	default:
		return nil, fmt.Errorf("unknown graph cache backend %q", cfg.Graph.CacheBackend)
	}
}

// Database подключает PostGIS (один раз) и применяет схему слоев
func (c *Components) Database(ctx context.Context, cfg *config.Config) (*postgres.DB, error) {
	return c.database(ctx, cfg)
}

func (c *Components) database(ctx context.Context, cfg *config.Config) (*postgres.DB, error) {
	if c.DB != nil {
		return c.DB, nil
	}

	db, err := postgres.New(&cfg.Database, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := postgres.NewFeatureRepository(db).Migrate(migrateCtx); err != nil {
		db.Close()
		return nil, err
	}

	c.DB = db
	return db, nil
}

// Close закрывает открытые подключения
func (c *Components) Close() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.logger.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
		c.DB = nil
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
		c.Redis = nil
	}
}
