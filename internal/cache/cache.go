// Package cache stores derived text such as brand resource insights.
package cache

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"productshots/internal/infra"
)

// Cache is a string key/value store with expiry. Implementations must be safe
// for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (Noop) Set(context.Context, string, string, time.Duration) error {
	return nil
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		if current, ok := m.entries[key]; ok && current == entry {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores value; a non-positive ttl never expires.
func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Redis stores entries under a key prefix.
type Redis struct {
	client redisClient
	prefix string
}

func NewRedis(client redisClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// LoadTimeout bounds a shared ReadThrough load.
const LoadTimeout = 2 * time.Minute

// ReadThrough loads missing keys once even when many callers ask at the same
// time. Cache failures degrade to a miss. A caller that gives up returns its
// own context error; the shared load keeps running for the others.
type ReadThrough struct {
	cache  Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *infra.Logger
}

func NewReadThrough(c Cache, ttl time.Duration, logger *infra.Logger) *ReadThrough {
	if c == nil {
		c = Noop{}
	}
	if logger == nil {
		discard := infra.Logger(zerolog.New(io.Discard))
		logger = &discard
	}
	return &ReadThrough{cache: c, ttl: ttl, logger: logger}
}

// Get returns the cached value for key or stores the result of load.
func (r *ReadThrough) Get(ctx context.Context, key string, load func(context.Context) (string, error)) (string, error) {
	value, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache: get failed")
	}
	if ok {
		return value, nil
	}

	ch := r.group.DoChan(key, func() (interface{}, error) {
		// Joiners share this load; it is detached from the caller that started it.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()

		loaded, err := load(loadCtx)
		if err != nil {
			return "", err
		}
		if err := r.cache.Set(loadCtx, key, loaded, r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("cache: set failed")
		}
		return loaded, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}
