// Package cache provides the idempotency cache collaborator calls are
// keyed through: a retried call against the same (collaborator, entity)
// pair returns the previously cached result instead of re-invoking the
// backend. Backed by Redis when configured, an in-process map otherwise.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Idempotency is the contract engines' collaborator wrappers depend on.
type Idempotency interface {
	// Get looks up a previously stored result for key, unmarshalling it
	// into dest. ok is false on a cache miss.
	Get(ctx context.Context, key string, dest any) (ok bool, err error)
	// Put stores value under key with the given time-to-live.
	Put(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Key builds an idempotency cache key from a collaborator name and entity id.
func Key(collaborator, entityID string) string {
	return collaborator + ":" + entityID
}

// memoryCache is a thread-safe in-process fallback used when no Redis
// address is configured.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	payload []byte
	expires time.Time
}

// NewMemory builds an in-process Idempotency cache.
func NewMemory() Idempotency {
	return &memoryCache{entries: make(map[string]memoryEntry)}
}

func (m *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(entry.expires) {
		delete(m.entries, key)
		return false, nil
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *memoryCache) Put(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{payload: payload, expires: time.Now().Add(ttl)}
	return nil
}

// redisCache stores entries in Redis. It has no local fallback; callers
// needing resilience against a down Redis should wrap with NewMemory
// themselves.
type redisCache struct {
	client *redis.Client
}

// NewRedis builds an Idempotency cache backed by a Redis server at addr.
func NewRedis(addr string) Idempotency {
	return &redisCache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *redisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCache) Put(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, payload, ttl).Err()
}

// New selects a Redis-backed cache when addr is non-empty, else an
// in-process map.
func New(addr string) Idempotency {
	if addr == "" {
		return NewMemory()
	}
	return NewRedis(addr)
}
