package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Graph    GraphConfig
	Features FeaturesConfig
	Cost     CostConfig
	Reweight ReweightConfig
	Route    RouteConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level string
}

// GraphConfig - откуда брать базовый граф и где хранить производные
type GraphConfig struct {
	Place           string
	DataDir         string
	BaseFile        string
	NodeLinkFile    string
	CacheBackend    string
	CacheTTL        time.Duration
	OverpassURL     string
	OverpassTimeout time.Duration
}

// FeaturesConfig - источник слоев безопасности
type FeaturesConfig struct {
	Source string
	Dir    string
	Files  map[string]string
	Radius float64
}

type CostConfig struct {
	FixedPenalty float64
	Crime        float64
	CCTV         float64
	Police       float64
	Lighting     float64
	Venue        float64
	MinCost      float64
}

type ReweightConfig struct {
	Workers int
}

type RouteConfig struct {
	StartLat float64
	StartLon float64
	EndLat   float64
	EndLon   float64
	Mode     string
	Output   string
}

type WorkerConfig struct {
	Enabled        bool
	WarmupInterval time.Duration
}

const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"

	FeatureSourceGeoJSON = "geojson"
	FeatureSourcePostGIS = "postgis"
)

// Load читает конфигурацию из .env файла (если он есть) и переменных окружения
func Load(path string) (*Config, error) {
	if path == "" {
		path = ".env"
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setCostDefaults(v)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("API_HOST"),
			Port:        v.GetInt("API_PORT"),
			Env:         v.GetString("API_ENV"),
			CORSOrigins: v.GetString("API_CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Graph: GraphConfig{
			Place:           v.GetString("GRAPH_PLACE"),
			DataDir:         v.GetString("GRAPH_DATA_DIR"),
			BaseFile:        v.GetString("GRAPH_BASE_FILE"),
			NodeLinkFile:    v.GetString("GRAPH_NODE_LINK_FILE"),
			CacheBackend:    strings.ToLower(v.GetString("GRAPH_CACHE_BACKEND")),
			CacheTTL:        time.Duration(v.GetInt("GRAPH_CACHE_TTL")) * time.Second,
			OverpassURL:     v.GetString("OVERPASS_URL"),
			OverpassTimeout: time.Duration(v.GetInt("OVERPASS_TIMEOUT")) * time.Second,
		},
		Features: FeaturesConfig{
			Source: strings.ToLower(v.GetString("FEATURES_SOURCE")),
			Dir:    v.GetString("FEATURES_DIR"),
			Files: map[string]string{
				"crime":    v.GetString("FEATURES_FILE_CRIME"),
				"cctv":     v.GetString("FEATURES_FILE_CCTV"),
				"lighting": v.GetString("FEATURES_FILE_LIGHTING"),
				"venue":    v.GetString("FEATURES_FILE_VENUE"),
				"police":   v.GetString("FEATURES_FILE_POLICE"),
			},
			Radius: v.GetFloat64("FEATURES_RADIUS"),
		},
		Cost: CostConfig{
			FixedPenalty: v.GetFloat64("COST_FIXED_PENALTY"),
			Crime:        v.GetFloat64("COST_CRIME"),
			CCTV:         v.GetFloat64("COST_CCTV"),
			Police:       v.GetFloat64("COST_POLICE"),
			Lighting:     v.GetFloat64("COST_LIGHTING"),
			Venue:        v.GetFloat64("COST_VENUE"),
			MinCost:      v.GetFloat64("COST_MIN"),
		},
		Reweight: ReweightConfig{
			Workers: v.GetInt("REWEIGHT_WORKERS"),
		},
		Route: RouteConfig{
			StartLat: v.GetFloat64("ROUTE_START_LAT"),
			StartLon: v.GetFloat64("ROUTE_START_LON"),
			EndLat:   v.GetFloat64("ROUTE_END_LAT"),
			EndLon:   v.GetFloat64("ROUTE_END_LON"),
			Mode:     strings.ToLower(v.GetString("ROUTE_MODE")),
			Output:   v.GetString("ROUTE_OUTPUT"),
		},
		Worker: WorkerConfig{
			Enabled:        v.GetBool("WORKER_ENABLED"),
			WarmupInterval: time.Duration(v.GetInt("WORKER_WARMUP_INTERVAL")) * time.Second,
		},
	}

	// Set default values if not provided
	cfg.applyDefaults()

	return cfg, nil
}

func setCostDefaults(v *viper.Viper) {
	// нулевой коэффициент допустим, поэтому значения задаются через viper, а не после загрузки
	v.SetDefault("COST_FIXED_PENALTY", 25000.0)
	v.SetDefault("COST_CRIME", 1000.0)
	v.SetDefault("COST_CCTV", 1000.0)
	v.SetDefault("COST_POLICE", 2500.0)
	v.SetDefault("COST_LIGHTING", 200.0)
	v.SetDefault("COST_VENUE", 4000.0)
	v.SetDefault("COST_MIN", 0.001)
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Server.CORSOrigins == "" {
		c.Server.CORSOrigins = "http://localhost:3000,http://localhost:5173"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}

	if c.Graph.Place == "" {
		c.Graph.Place = "Bangalore, India"
	}
	if c.Graph.DataDir == "" {
		c.Graph.DataDir = "data"
	}
	if c.Graph.BaseFile == "" {
		c.Graph.BaseFile = "base_graph.gob"
	}
	if c.Graph.CacheBackend == "" {
		c.Graph.CacheBackend = CacheBackendFile
	}
	if c.Graph.OverpassURL == "" {
		c.Graph.OverpassURL = "https://overpass-api.de/api/interpreter"
	}
	if c.Graph.OverpassTimeout == 0 {
		c.Graph.OverpassTimeout = 180 * time.Second
	}

	if c.Features.Source == "" {
		c.Features.Source = FeatureSourceGeoJSON
	}
	if c.Features.Dir == "" {
		c.Features.Dir = "."
	}
	defaultFiles := map[string]string{
		"crime":    "crimes.geojson",
		"cctv":     "cctv.geojson",
		"lighting": "streetlights.geojson",
		"venue":    "pubs.geojson",
		"police":   "police.geojson",
	}
	for layer, file := range defaultFiles {
		if c.Features.Files[layer] == "" {
			c.Features.Files[layer] = file
		}
	}
	if c.Features.Radius == 0 {
		c.Features.Radius = 75
	}

	if c.Reweight.Workers <= 0 {
		c.Reweight.Workers = runtime.NumCPU()
	}

	if c.Route.StartLat == 0 && c.Route.StartLon == 0 {
		c.Route.StartLat, c.Route.StartLon = 12.99310, 77.55318
	}
	if c.Route.EndLat == 0 && c.Route.EndLon == 0 {
		c.Route.EndLat, c.Route.EndLon = 12.99507, 77.55345
	}
	if c.Route.Mode == "" {
		c.Route.Mode = "auto"
	}
	if c.Route.Output == "" {
		c.Route.Output = "safest_route_map.html"
	}

	if c.Worker.WarmupInterval == 0 {
		c.Worker.WarmupInterval = time.Minute
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN - строка подключения в формате key=value (pgx и lib/pq)
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
