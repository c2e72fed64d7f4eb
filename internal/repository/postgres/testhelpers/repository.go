package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"github.com/saferoute-service/internal/repository/postgres"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewFeatureRepositoryForTest creates a feature repository with test database and logger
func NewFeatureRepositoryForTest(db *sqlx.DB, logger *zap.Logger) *postgres.FeatureRepository {
	pgDB := NewDBForTest(db, logger)
	return postgres.NewFeatureRepository(pgDB)
}
