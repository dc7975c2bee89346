package core

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"lifeledger-backend-go/internal/models"
	"lifeledger-backend-go/pkg/cache"
)

const (
	latestFeedKey      = "lifeledger:feed:latest"
	categoryFeedPrefix = "lifeledger:feed:category:"
)

func categoryFeedKey(category string) string { return categoryFeedPrefix + category }

// feedCache is a read-through cache for the public lesson feeds. Cache errors
// are logged and treated as misses.
type feedCache struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func (f *feedCache) get(ctx context.Context, key string) ([]*models.Lesson, bool) {
	if f == nil || f.cache == nil {
		return nil, false
	}
	raw, ok, err := f.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var lessons []*models.Lesson
	if err := json.Unmarshal([]byte(raw), &lessons); err != nil {
		f.logger.Warn("Discarding undecodable feed cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return lessons, true
}

func (f *feedCache) set(ctx context.Context, key string, lessons []*models.Lesson) {
	if f == nil || f.cache == nil {
		return
	}
	raw, err := json.Marshal(lessons)
	if err != nil {
		return
	}
	if err := f.cache.Set(ctx, key, string(raw), f.ttl); err != nil {
		f.logger.Warn("Feed cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate drops the latest feed and the feed of category.
func (f *feedCache) invalidate(ctx context.Context, category string) {
	if f == nil || f.cache == nil {
		return
	}
	keys := []string{latestFeedKey}
	if category != "" {
		keys = append(keys, categoryFeedKey(category))
	}
	if err := f.cache.Delete(ctx, keys...); err != nil {
		f.logger.Warn("Feed cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
