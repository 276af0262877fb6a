package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache stores encoded catalog listings. A miss is reported as (false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type memoryCache struct {
	store *cache.Cache
}

// NewMemoryCache keeps entries in process for ttl.
func NewMemoryCache(ttl time.Duration) Cache {
	return &memoryCache{store: cache.New(ttl, 2*ttl)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte) error {
	m.store.SetDefault(key, value)
	return nil
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache shares entries between instances through redis.
func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl, prefix: "admissions:catalog:"}
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, true, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

type noopCache struct{}

// NewNoopCache disables caching.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, string, []byte) error         { return nil }

func decode[T any](b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}
