package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/domain/repository"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/pkg/utils"
	"github.com/saferoute-service/internal/repository/codec"
	"go.uber.org/zap"
)

const keyPrefix = "saferoute:graph"

// graphCache хранит взвешенные варианты графа в Redis.
// Отпечаток входит в ключ, поэтому устаревший вариант просто не находится.
type graphCache struct {
	client *redis.Client
	place  string
	ttl    time.Duration
	logger *zap.Logger
}

func NewGraphCache(r *Redis, place string, ttl time.Duration) repository.DerivedGraphRepository {
	return &graphCache{
		client: r.Client(),
		place:  place,
		ttl:    ttl,
		logger: r.logger,
	}
}

// Key возвращает ключ Redis для варианта графа
func Key(place string, key domain.VariantKey) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, utils.Slug(place), key.Mode, key.Fingerprint)
}

func (c *graphCache) Exists(ctx context.Context, key domain.VariantKey) (bool, error) {
	val, err := c.client.Exists(ctx, Key(c.place, key)).Result()
	if err != nil {
		c.logger.Error("Failed to check cache existence", zap.String("key", key.String()), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}
	return val > 0, nil
}

func (c *graphCache) Load(ctx context.Context, key domain.VariantKey) (*domain.StreetGraph, error) {
	data, err := c.client.Get(ctx, Key(c.place, key)).Bytes()
	if err == redis.Nil {
		return nil, errors.Wrap(errors.ErrSerialization, nil,
			fmt.Sprintf("derived graph %s not cached", key))
	}
	if err != nil {
		c.logger.Error("Failed to get from cache", zap.String("key", key.String()), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	g, h, err := codec.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if h.Fingerprint != key.Fingerprint || h.Mode != string(key.Mode) {
		return nil, errors.Wrap(errors.ErrSerialization, nil,
			fmt.Sprintf("derived graph %s does not match cached header", key))
	}

	c.logger.Debug("Cache hit", zap.String("key", key.String()), zap.Int("bytes", len(data)))
	return g, nil
}

func (c *graphCache) Save(ctx context.Context, key domain.VariantKey, g *domain.StreetGraph) error {
	data, err := codec.Marshal(g, key.Fingerprint, key.Mode)
	if err != nil {
		return errors.Wrap(errors.ErrSerialization, err, "encode graph")
	}

	if err := c.client.Set(ctx, Key(c.place, key), data, c.ttl).Err(); err != nil {
		c.logger.Error("Failed to set cache", zap.String("key", key.String()), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	c.logger.Info("Derived graph cached",
		zap.String("key", key.String()),
		zap.Int("bytes", len(data)),
		zap.Duration("ttl", c.ttl),
	)
	return nil
}
