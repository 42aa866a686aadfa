package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/maxaizer/jobmarket/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"sync"
	"time"
)

// CacheEntry is what the local tier stores under a param key.
type CacheEntry struct {
	DatasetVersion string
	ParamKey       string
	Value          any
}

// Cache memoizes computed results per (dataset version, params). Entries never expire on their own:
// the whole set is dropped when a different dataset version is observed or on Clear.
//
// Cached values are shared between callers and must be treated as read-only.
type Cache struct {
	mu      sync.Mutex
	version string
	local   *gocache.Cache

	remote    *redis.Client
	prefix    string
	remoteTTL time.Duration
}

type Option func(*Cache)

// WithRedis adds a shared second tier. Redis failures are logged and otherwise ignored.
func WithRedis(client *redis.Client, prefix string, ttl time.Duration) Option {
	return func(c *Cache) {
		c.remote = client
		c.prefix = prefix
		c.remoteTTL = ttl
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{local: gocache.New(gocache.NoExpiration, 0)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRedisClient parses redisURL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

// GetOrCompute returns the cached result for (version, params) or runs compute and caches its result.
// Errors from compute are returned as is and never cached.
func GetOrCompute[T any](ctx context.Context, c *Cache, version string, params any,
	compute func(ctx context.Context) (T, error)) (T, error) {

	var zero T
	paramKey, err := StableSerialize(params)
	if err != nil {
		return zero, fmt.Errorf("serialize cache params: %w", err)
	}

	if entry, found := c.lookup(version, paramKey); found {
		if value, ok := entry.Value.(T); ok {
			metrics.CacheHitsCounter.WithLabelValues("local").Inc()
			return value, nil
		}
	}

	if value, found := loadRemote[T](ctx, c, version, paramKey); found {
		metrics.CacheHitsCounter.WithLabelValues("redis").Inc()
		c.store(version, paramKey, value)
		return value, nil
	}

	metrics.CacheMissesCounter.Inc()
	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	c.store(version, paramKey, value)
	c.saveRemote(ctx, version, paramKey, value)
	return value, nil
}

// Clear drops every entry of both tiers.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.local.Flush()
	c.version = ""
	c.mu.Unlock()

	if c.remote == nil {
		return
	}

	iter := c.remote.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).Warnf("cache: redis scan failed: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.remote.Del(ctx, keys...).Err(); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).Warnf("cache: redis delete failed: %v", err)
	}
}

func (c *Cache) Version() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *Cache) Len() int {
	return c.local.ItemCount()
}

// lookup also registers version as the current one, flushing entries of any other version.
func (c *Cache) lookup(version, paramKey string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.version != version {
		if c.version != "" {
			log.Infof("cache: dataset version changed from %q to %q, dropping %d entries",
				c.version, version, c.local.ItemCount())
		}
		c.local.Flush()
		c.version = version
		return CacheEntry{}, false
	}

	cached, found := c.local.Get(paramKey)
	if !found {
		return CacheEntry{}, false
	}
	entry := cached.(CacheEntry)
	return entry, entry.DatasetVersion == version
}

func (c *Cache) store(version, paramKey string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// a newer version arrived while computing
	if c.version != version {
		return
	}
	c.local.Set(paramKey, CacheEntry{DatasetVersion: version, ParamKey: paramKey, Value: value}, gocache.NoExpiration)
}

func (c *Cache) remoteKey(version, paramKey string) string {
	hash := sha256.Sum256([]byte(version + "|" + paramKey))
	return c.prefix + hex.EncodeToString(hash[:])
}

func loadRemote[T any](ctx context.Context, c *Cache, version, paramKey string) (T, bool) {
	var value T
	if c.remote == nil {
		return value, false
	}

	data, err := c.remote.Get(ctx, c.remoteKey(version, paramKey)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).Warnf("cache: redis get failed: %v", err)
		}
		return value, false
	}

	if err := json.Unmarshal(data, &value); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).Warnf("cache: corrupt redis entry: %v", err)
		return value, false
	}
	return value, true
}

func (c *Cache) saveRemote(ctx context.Context, version, paramKey string, value any) {
	if c.remote == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).Warnf("cache: can't encode result: %v", err)
		return
	}
	if err := c.remote.Set(ctx, c.remoteKey(version, paramKey), data, c.remoteTTL).Err(); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).Warnf("cache: redis set failed: %v", err)
	}
}
