package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

type MemoryCache[S any] struct {
	mu sync.RWMutex
	m  map[string]S
}

func NewMemoryCache[S any]() *MemoryCache[S] {
	return &MemoryCache[S]{m: map[string]S{}}
}

func (m *MemoryCache[S]) Set(ctx context.Context, key string, val S) error {
	m.mu.Lock()
	m.m[key] = val
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	m.mu.RLock()
	val, ok := m.m[key]
	m.mu.RUnlock()
	return val, ok, nil
}

func (m *MemoryCache[S]) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.m, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	_, ok := m.m[key]
	m.mu.RUnlock()
	return ok, nil
}

// RedisCache stores JSON encoded values in redis. A zero TTL keeps keys forever.
type RedisCache[S any] struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache[S any](client *redis.Client, ttl time.Duration) *RedisCache[S] {
	return &RedisCache[S]{client: client, ttl: ttl}
}

func (r *RedisCache[S]) Set(ctx context.Context, key string, val S) error {
	raw, err := sonic.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.client.Set(ctx, key, raw, r.ttl).Err()
}

func (r *RedisCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	var val S
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return val, false, nil
	}
	if err != nil {
		return val, false, err
	}
	if err := sonic.Unmarshal(raw, &val); err != nil {
		return val, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisCache[S]) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
