package repository

import (
	"context"

	"github.com/saferoute-service/internal/domain"
)

// BaseGraphRepository хранит исходный (невзвешенный) граф улиц
type BaseGraphRepository interface {
	// Load возвращает сохраненный граф или nil, если его еще нет
	Load(ctx context.Context) (*domain.StreetGraph, error)

	// Save сохраняет граф
	Save(ctx context.Context, graph *domain.StreetGraph) error
}

// GraphFetcher получает пешеходную сеть для места по названию
type GraphFetcher interface {
	Fetch(ctx context.Context, place string) (*domain.StreetGraph, error)
}

// DerivedGraphRepository хранит взвешенные варианты графа (day/night)
type DerivedGraphRepository interface {
	// Exists проверяет наличие варианта с тем же отпечатком
	Exists(ctx context.Context, key domain.VariantKey) (bool, error)

	// Load загружает вариант. Поврежденные данные - SERIALIZATION_ERROR
	Load(ctx context.Context, key domain.VariantKey) (*domain.StreetGraph, error)

	// Save сохраняет вариант
	Save(ctx context.Context, key domain.VariantKey, graph *domain.StreetGraph) error
}
