package repository

import (
	"context"

	"github.com/saferoute-service/internal/domain"
)

// FeatureRepository загружает точечные слои безопасности
type FeatureRepository interface {
	// Load возвращает слой в WGS84. Пустой слой - не ошибка
	Load(ctx context.Context, layer domain.LayerName) (*domain.FeatureLayer, error)
}
