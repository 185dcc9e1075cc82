package service

import (
	"context"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/repository/redisrepo"
	"go.uber.org/zap"
)

const defaultToggleTTL = 2 * time.Second

// toggleGuard rejects a second like/follow toggle of the same pair while the
// first one is still between its read and its write. The lock expires on its
// own if the holder never releases it.
type toggleGuard struct {
	cache redisrepo.Default
	ttl   time.Duration
}

func newToggleGuard(cache redisrepo.Default, ttl time.Duration) *toggleGuard {
	if ttl <= 0 {
		ttl = defaultToggleTTL
	}
	return &toggleGuard{
		cache: cache,
		ttl:   ttl,
	}
}

// acquire returns a release func. Without redis there is nothing to hold and
// toggles are not serialized.
func (g *toggleGuard) acquire(ctx context.Context, logger *zap.Logger, key string) (func(), error) {
	if g == nil || g.cache == nil {
		return func() {}, nil
	}

	ok, err := g.cache.SetNX(ctx, key, 1, g.ttl).Result()
	if err != nil {
		logger.Sugar().Errorf("failed to acquire toggle lock(%s): %s", key, err.Error())
		return func() {}, nil
	}
	if !ok {
		return nil, ErrToggleInProgress
	}

	return func() {
		if err := g.cache.Del(context.Background(), key).Err(); err != nil {
			logger.Sugar().Errorf("failed to release toggle lock(%s): %s", key, err.Error())
		}
	}, nil
}
