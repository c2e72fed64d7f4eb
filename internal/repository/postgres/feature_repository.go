package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id         BIGSERIAL PRIMARY KEY,
		layer      TEXT NOT NULL,
		geom       geometry(Geometry, %d) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, featuresTable, SRID4326),
	fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_layer ON %[1]s (layer)`, featuresTable),
	fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_geom ON %[1]s USING GIST (geom)`, featuresTable),
}

type featureRow struct {
	ID  int64   `db:"id"`
	Lon float64 `db:"lon"`
	Lat float64 `db:"lat"`
}

// FeatureRepository читает слои безопасности из таблицы safety_features (PostGIS)
type FeatureRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewFeatureRepository(db *DB) *FeatureRepository {
	return &FeatureRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// Migrate создает таблицу и индексы, если их нет
func (r *FeatureRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate safety_features: %w", err)
		}
	}
	return nil
}

// Load возвращает точки слоя в WGS84. Непроточечные геометрии заменяются центроидом.
func (r *FeatureRepository) Load(ctx context.Context, layer domain.LayerName) (*domain.FeatureLayer, error) {
	lon, lat := lonLatSQL("geom")
	query := fmt.Sprintf(`
		SELECT
			id,
			%s AS lon,
			%s AS lat
		FROM %s
		WHERE layer = $1
		ORDER BY id
	`, lon, lat, featuresTable)

	var rows []featureRow
	if err := r.db.SelectContext(ctx, &rows, query, string(layer)); err != nil {
		r.logger.Error("Failed to load feature layer",
			zap.String("layer", string(layer)),
			zap.Error(err),
		)
		return nil, errors.Wrap(errors.ErrDataLoad, err,
			fmt.Sprintf("failed to load %s layer from database", layer))
	}

	fl := &domain.FeatureLayer{
		Name:   layer,
		CRS:    CRS4326,
		Points: make([]orb.Point, 0, len(rows)),
	}
	for _, row := range rows {
		fl.Points = append(fl.Points, orb.Point{row.Lon, row.Lat})
	}

	r.logger.Info("Feature layer loaded",
		zap.String("layer", string(layer)),
		zap.String("source", "postgis"),
		zap.Int("points", len(fl.Points)),
	)
	return fl, nil
}

// Replace заменяет все точки слоя одной транзакцией
func (r *FeatureRepository) Replace(ctx context.Context, fl *domain.FeatureLayer) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE layer = $1`, featuresTable), string(fl.Name)); err != nil {
		return fmt.Errorf("clear %s layer: %w", fl.Name, err)
	}

	stmt, err := tx.PreparexContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (layer, geom) VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), %d))`, featuresTable, SRID4326))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range fl.Points {
		if _, err = stmt.ExecContext(ctx, string(fl.Name), p[0], p[1]); err != nil {
			return fmt.Errorf("insert %s feature: %w", fl.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s layer: %w", fl.Name, err)
	}

	r.logger.Info("Feature layer stored",
		zap.String("layer", string(fl.Name)),
		zap.Int("points", len(fl.Points)),
	)
	return nil
}
