package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/campusdesk/import-service/internal/models"
)

const statsKeyPrefix = "collection_stats:"

// CollectionStats is the cached item-count metadata of one collection,
// refreshed best-effort after each successful commit.
type CollectionStats struct {
	Entity      models.ImportEntity `json:"entity"`
	Count       int64               `json:"count"`
	RefreshedAt time.Time           `json:"refreshed_at"`
}

// StatsCache stores per-collection counts. Entries have no expiry;
// each commit overwrites the previous value.
type StatsCache struct {
	cache CacheService
}

func NewStatsCache(cache CacheService) *StatsCache {
	return &StatsCache{cache: cache}
}

func statsKey(entity models.ImportEntity) string {
	return statsKeyPrefix + string(entity)
}

// RefreshCount overwrites the cached count for an entity.
func (s *StatsCache) RefreshCount(ctx context.Context, entity models.ImportEntity, count int64) error {
	stats := CollectionStats{
		Entity:      entity,
		Count:       count,
		RefreshedAt: time.Now(),
	}
	if err := s.cache.Set(ctx, statsKey(entity), stats, 0); err != nil {
		return fmt.Errorf("refresh count for %s: %w", entity, err)
	}
	return nil
}

// GetCount returns the cached count; ErrCacheMiss when never refreshed.
func (s *StatsCache) GetCount(ctx context.Context, entity models.ImportEntity) (*CollectionStats, error) {
	var stats CollectionStats
	if err := s.cache.Get(ctx, statsKey(entity), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Invalidate drops the cached count for an entity.
func (s *StatsCache) Invalidate(ctx context.Context, entity models.ImportEntity) error {
	return s.cache.Delete(ctx, statsKey(entity))
}
