package catalog

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/easygametopup/storefront/internal/domain"
)

const (
	gamesCacheKey      = "catalog:games"
	productsCachePref  = "catalog:products:"
	catalogCacheExpiry = 5 * time.Minute
)

type Repository interface {
	ListGames(ctx context.Context) ([]domain.Game, error)
	ListActiveProducts(ctx context.Context, gameID string) ([]domain.Product, error)
}

type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Service serves the read-only catalog, fronted by a short-lived cache.
type Service struct {
	repo   Repository
	cache  CacheRepository // nil disables caching
	logger *zap.Logger
}

func NewService(repo Repository, cache CacheRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) ListGames(ctx context.Context) ([]domain.Game, error) {
	var cached []domain.Game
	if s.fromCache(ctx, gamesCacheKey, &cached) {
		return cached, nil
	}

	games, err := s.repo.ListGames(ctx)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, gamesCacheKey, games)
	return games, nil
}

// ListProducts returns active products, optionally filtered to one game.
func (s *Service) ListProducts(ctx context.Context, gameID string) ([]domain.Product, error) {
	cacheKey := productsCachePref + gameID

	var cached []domain.Product
	if s.fromCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	products, err := s.repo.ListActiveProducts(ctx, gameID)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, cacheKey, products)
	return products, nil
}

func (s *Service) fromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == "" {
		return false
	}
	return json.Unmarshal([]byte(data), dest) == nil
}

func (s *Service) toCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, catalogCacheExpiry); err != nil {
		s.logger.Warn("failed to cache catalog entry", zap.String("key", key), zap.Error(err))
	}
}
