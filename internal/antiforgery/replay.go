package antiforgery

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	goredis "github.com/redis/go-redis/v9"

	id "sampad/pkg/domain"
)

// ReplayStore records consumed token ids. Consume returns false when the id was already used.
type ReplayStore interface {
	Consume(ctx context.Context, tokenID id.TokenID, ttl time.Duration) (bool, error)
}

const redisKeyPrefix = "sampad:antiforgery:"

// RedisReplayStore shares consumed ids across replicas with SETNX.
type RedisReplayStore struct {
	client goredis.Cmdable
}

func NewRedisReplayStore(client goredis.Cmdable) *RedisReplayStore {
	return &RedisReplayStore{client: client}
}

func (s *RedisReplayStore) Consume(ctx context.Context, tokenID id.TokenID, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, redisKeyPrefix+tokenID.String(), 1, ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// CacheReplayStore keeps consumed ids in process memory; entries expire with the token.
type CacheReplayStore struct {
	cache *cache.Cache
}

func NewCacheReplayStore(cleanupInterval time.Duration) *CacheReplayStore {
	return &CacheReplayStore{cache: cache.New(cache.NoExpiration, cleanupInterval)}
}

func (s *CacheReplayStore) Consume(ctx context.Context, tokenID id.TokenID, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if ttl <= 0 {
		return false, errors.New("replay ttl must be positive")
	}
	// Add is atomic and fails when the key is present and unexpired.
	if err := s.cache.Add(tokenID.String(), struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

// Len reports how many consumed ids are held, expired entries included until cleanup.
func (s *CacheReplayStore) Len() int {
	return s.cache.ItemCount()
}
