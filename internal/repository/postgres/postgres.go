package postgres

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/saferoute-service/internal/config"
)

// DB - подключение к PostGIS со слоями безопасности
type DB struct {
	*sqlx.DB
	logger *zap.Logger
}

// New подключается к базе и проверяет, что расширение PostGIS доступно
func New(cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN() + " application_name=saferoute"

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pg := &DB{DB: db, logger: logger}

	// CREATE EXTENSION в Migrate может не пройти без прав суперпользователя,
	// поэтому отсутствие PostGIS здесь только предупреждение
	version, err := pg.PostGISVersion(ctx)
	if err != nil {
		logger.Warn("PostGIS is not installed yet", zap.Error(err))
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.DBName),
		zap.String("postgis", version),
	)

	return pg, nil
}

// PostGISVersion возвращает версию расширения PostGIS
func (db *DB) PostGISVersion(ctx context.Context) (string, error) {
	var version string
	if err := db.GetContext(ctx, &version, "SELECT PostGIS_Version()"); err != nil {
		return "", fmt.Errorf("postgis version: %w", err)
	}
	return version, nil
}

func (db *DB) Close() error {
	db.logger.Info("Closing PostgreSQL connection")
	return db.DB.Close()
}

func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// NewDBForTest creates a DB instance for testing with provided database and logger
func NewDBForTest(sqlxDB *sqlx.DB, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{
		DB:     sqlxDB,
		logger: logger,
	}
}
