// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package identity

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/tranquangduy/midgard/internal/platform/constants"
)

// RedisCache implements [Cache] on top of go-redis.
//
// # Failure Mode
//
// Redis outages must never block identity resolution. Every error here is
// logged and swallowed; callers fall through to PostgreSQL.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisCache constructs the Redis backed identity cache.
func NewRedisCache(client *redis.Client, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

// GetUserID returns the cached internal id for an external identity.
// The second return value reports a cache hit.
func (cache *RedisCache) GetUserID(context context.Context, externalID string) (string, bool) {
	value, err := cache.client.Get(context, constants.RedisPrefixIdentity+externalID).Result()
	if err != nil {
		if err != redis.Nil {
			cache.logger.Warn("identity_cache_read_failed", slog.String("error", err.Error()))
		}
		return "", false
	}
	return value, true
}

// SetUserID stores the external-to-internal id mapping with a bounded TTL.
func (cache *RedisCache) SetUserID(context context.Context, externalID, userID string) {
	err := cache.client.Set(context, constants.RedisPrefixIdentity+externalID, userID, constants.IdentityCacheTTL).Err()
	if err != nil {
		cache.logger.Warn("identity_cache_write_failed", slog.String("error", err.Error()))
	}
}
