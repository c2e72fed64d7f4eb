package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/saferoute-service/internal/bootstrap"
	"github.com/saferoute-service/internal/config"
	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/logger"
	"github.com/saferoute-service/internal/render"
	"github.com/saferoute-service/internal/repository/geojson"
	"github.com/saferoute-service/internal/repository/postgres"
	"github.com/saferoute-service/internal/usecase/dto"
)

// Options - флаги командной строки. Заданные флаги перекрывают значения из .env
type Options struct {
	ConfigFile   string  `short:"c" long:"config"        env:"CONFIG_FILE" description:"Path to .env configuration file" default:".env"`
	LogLevel     string  `long:"log-level"               description:"Log level (debug, info, warn, error)"`
	Place        string  `short:"p" long:"place"         description:"Place name to fetch the street network for"`
	StartLat     float64 `long:"start-lat"               description:"Start latitude"`
	StartLon     float64 `long:"start-lon"               description:"Start longitude"`
	EndLat       float64 `long:"end-lat"                 description:"End latitude"`
	EndLon       float64 `long:"end-lon"                 description:"End longitude"`
	Mode         string  `short:"m" long:"mode"          description:"Time mode" choice:"day" choice:"night" choice:"auto"`
	Output       string  `short:"o" long:"output"        description:"Output HTML map path"`
	Radius       float64 `short:"r" long:"radius"        description:"Feature search radius in meters"`
	Workers      int     `short:"w" long:"workers"       description:"Reweighting workers"`
	NodeLink     string  `long:"node-link"               description:"Import the street graph from a node-link JSON file instead of Overpass"`
	SyncFeatures bool    `long:"sync-features"           description:"Copy GeoJSON feature layers into PostGIS before routing"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// 1. Load configuration
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(parser, &opts, cfg)

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts.SyncFeatures, log); err != nil {
		log.Error("Safe route run failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, syncFeatures bool, log *zap.Logger) error {
	started := time.Now()

	log.Info("Starting safe route batch",
		zap.String("place", cfg.Graph.Place),
		zap.String("mode", cfg.Route.Mode),
		zap.String("cache_backend", cfg.Graph.CacheBackend),
		zap.String("features_source", cfg.Features.Source))

	// 3. Wire repositories and use case
	c, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	if syncFeatures {
		if err := syncLayers(ctx, c, cfg, log); err != nil {
			return err
		}
	}

	// 4. Base graph, layers and both weighted variants
	if err := c.UseCase.Prepare(ctx); err != nil {
		return err
	}

	// 5. Route
	resp, err := c.UseCase.FindSafestRoute(ctx, dto.RouteRequest{
		Start: dto.Point{Lat: cfg.Route.StartLat, Lon: cfg.Route.StartLon},
		End:   dto.Point{Lat: cfg.Route.EndLat, Lon: cfg.Route.EndLon},
		Mode:  cfg.Route.Mode,
	})
	if err != nil {
		return err
	}

	// 6. Render map
	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		return err
	}
	err = renderer.RenderFile(cfg.Route.Output, render.RouteMap{
		Title:     fmt.Sprintf("Safest route, %s (%s)", resp.Place, resp.Mode),
		Mode:      resp.Mode,
		Start:     resp.Start,
		End:       resp.End,
		Path:      resp.Coordinates,
		Cost:      resp.TotalCost,
		DistanceM: resp.DistanceM,
	})
	if err != nil {
		return err
	}

	log.Info("Safe route map saved",
		zap.String("output", cfg.Route.Output),
		zap.String("mode", string(resp.Mode)),
		zap.Int64("start_node", resp.StartNode),
		zap.Int64("end_node", resp.EndNode),
		zap.Int("nodes", len(resp.Nodes)),
		zap.Float64("total_cost", resp.TotalCost),
		zap.Float64("distance_m", resp.DistanceM),
		zap.Float64("direct_distance_km", resp.DirectDistanceKm),
		zap.String("fingerprint", resp.Fingerprint),
		zap.Duration("elapsed", time.Since(started)))

	return nil
}

// syncLayers переносит слои из GeoJSON файлов в таблицу PostGIS
func syncLayers(ctx context.Context, c *bootstrap.Components, cfg *config.Config, log *zap.Logger) error {
	db, err := c.Database(ctx, cfg)
	if err != nil {
		return err
	}

	src := geojson.NewFeatureRepository(cfg.Features.Dir, cfg.Features.Files, log)
	dst := postgres.NewFeatureRepository(db)

	for _, name := range domain.AllLayers {
		fl, err := src.Load(ctx, name)
		if err != nil {
			return err
		}
		if err := dst.Replace(ctx, fl); err != nil {
			return err
		}
		log.Info("Feature layer synced", zap.String("layer", string(name)), zap.Int("points", fl.Len()))
	}
	return nil
}

func applyFlags(parser *flags.Parser, opts *Options, cfg *config.Config) {
	isSet := func(name string) bool {
		o := parser.FindOptionByLongName(name)
		return o != nil && o.IsSet()
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Place != "" {
		cfg.Graph.Place = opts.Place
	}
	if isSet("start-lat") {
		cfg.Route.StartLat = opts.StartLat
	}
	if isSet("start-lon") {
		cfg.Route.StartLon = opts.StartLon
	}
	if isSet("end-lat") {
		cfg.Route.EndLat = opts.EndLat
	}
	if isSet("end-lon") {
		cfg.Route.EndLon = opts.EndLon
	}
	if opts.Mode != "" {
		cfg.Route.Mode = opts.Mode
	}
	if opts.Output != "" {
		cfg.Route.Output = opts.Output
	}
	if opts.Radius > 0 {
		cfg.Features.Radius = opts.Radius
	}
	if opts.Workers > 0 {
		cfg.Reweight.Workers = opts.Workers
	}
	if opts.NodeLink != "" {
		cfg.Graph.NodeLinkFile = opts.NodeLink
	}
}
