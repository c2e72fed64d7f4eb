package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "Bangalore, India", cfg.Graph.Place)
	assert.Equal(t, CacheBackendFile, cfg.Graph.CacheBackend)
	assert.Equal(t, FeatureSourceGeoJSON, cfg.Features.Source)
	assert.Equal(t, 75.0, cfg.Features.Radius)
	assert.Equal(t, "pubs.geojson", cfg.Features.Files["venue"])
	assert.Equal(t, 25000.0, cfg.Cost.FixedPenalty)
	assert.Equal(t, 2500.0, cfg.Cost.Police)
	assert.Equal(t, 0.001, cfg.Cost.MinCost)
	assert.Equal(t, "auto", cfg.Route.Mode)
	assert.Equal(t, 12.99310, cfg.Route.StartLat)
	assert.Greater(t, cfg.Reweight.Workers, 0)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())
}

func TestLoad_FromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "GRAPH_PLACE=Camden, London\n" +
		"FEATURES_RADIUS=100\n" +
		"COST_LIGHTING=0\n" +
		"GRAPH_CACHE_BACKEND=REDIS\n" +
		"GRAPH_CACHE_TTL=3600\n" +
		"REDIS_PORT=6380\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Camden, London", cfg.Graph.Place)
	assert.Equal(t, 100.0, cfg.Features.Radius)
	assert.Equal(t, 0.0, cfg.Cost.Lighting, "explicit zero coefficient must survive defaults")
	assert.Equal(t, 4000.0, cfg.Cost.Venue)
	assert.Equal(t, CacheBackendRedis, cfg.Graph.CacheBackend)
	assert.Equal(t, time.Hour, cfg.Graph.CacheTTL)
	assert.Equal(t, "localhost:6380", cfg.GetRedisAddr())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ROUTE_MODE=day\n"), 0o644))
	t.Setenv("ROUTE_MODE", "night")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "night", cfg.Route.Mode)
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	cfg.Database.Host = "db"
	cfg.Database.User = "saferoute"
	cfg.Database.Password = "secret"
	cfg.Database.DBName = "features"

	assert.Equal(t,
		"host=db port=5432 user=saferoute password=secret dbname=features sslmode=disable",
		cfg.GetDatabaseDSN())
}
