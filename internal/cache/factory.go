package cache

import (
	"context"
	"fmt"

	"indx-go/internal/config"
	"indx-go/internal/indx"
)

// NewCacheFromConfig creates a CacheStore implementation based on the cache
// config type.
func NewCacheFromConfig(ctx context.Context, cfg config.CacheConfig) (indx.CacheStore, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryCache(nil), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis_addr required for redis cache")
		}
		return NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}
