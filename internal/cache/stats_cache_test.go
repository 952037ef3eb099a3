package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/campusdesk/import-service/internal/models"
)

// memoryCache backs StatsCache in tests with the same JSON round-trip
// the Redis implementation performs.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func TestStatsCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	stats := NewStatsCache(newMemoryCache())

	if err := stats.RefreshCount(ctx, models.EntityQuestions, 42); err != nil {
		t.Fatalf("RefreshCount failed: %v", err)
	}

	got, err := stats.GetCount(ctx, models.EntityQuestions)
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if got.Count != 42 || got.Entity != models.EntityQuestions {
		t.Errorf("Expected 42 questions, got %+v", got)
	}
	if got.RefreshedAt.IsZero() {
		t.Error("Expected RefreshedAt to be set")
	}
}

func TestStatsCacheMiss(t *testing.T) {
	stats := NewStatsCache(newMemoryCache())

	_, err := stats.GetCount(context.Background(), models.EntityQuestions)
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss on a cold cache, got %v", err)
	}
}

func TestStatsCacheOverwrites(t *testing.T) {
	ctx := context.Background()
	stats := NewStatsCache(newMemoryCache())

	if err := stats.RefreshCount(ctx, models.EntityCourses, 10); err != nil {
		t.Fatalf("RefreshCount failed: %v", err)
	}
	if err := stats.RefreshCount(ctx, models.EntityCourses, 12); err != nil {
		t.Fatalf("RefreshCount failed: %v", err)
	}

	got, err := stats.GetCount(ctx, models.EntityCourses)
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if got.Count != 12 {
		t.Errorf("Expected the later count to win, got %d", got.Count)
	}
}

func TestStatsCacheEntitiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	stats := NewStatsCache(newMemoryCache())

	if err := stats.RefreshCount(ctx, models.EntityQuestions, 5); err != nil {
		t.Fatalf("RefreshCount failed: %v", err)
	}
	if err := stats.RefreshCount(ctx, models.EntityCourses, 2); err != nil {
		t.Fatalf("RefreshCount failed: %v", err)
	}

	questions, err := stats.GetCount(ctx, models.EntityQuestions)
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	courses, err := stats.GetCount(ctx, models.EntityCourses)
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if questions.Count != 5 || courses.Count != 2 {
		t.Errorf("Expected 5 questions and 2 courses, got %d and %d", questions.Count, courses.Count)
	}
}

func TestStatsCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	stats := NewStatsCache(newMemoryCache())

	if err := stats.RefreshCount(ctx, models.EntityQuestions, 7); err != nil {
		t.Fatalf("RefreshCount failed: %v", err)
	}
	if err := stats.Invalidate(ctx, models.EntityQuestions); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	if _, err := stats.GetCount(ctx, models.EntityQuestions); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected a miss after invalidation, got %v", err)
	}
}

func TestStatsCacheWithNoopBackend(t *testing.T) {
	ctx := context.Background()
	stats := NewStatsCache(NewNoopCache())

	if err := stats.RefreshCount(ctx, models.EntityQuestions, 3); err != nil {
		t.Errorf("Expected the noop backend to accept writes, got %v", err)
	}
	if _, err := stats.GetCount(ctx, models.EntityQuestions); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected the noop backend to always miss, got %v", err)
	}
}
