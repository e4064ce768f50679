package engine

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const replyCachePrefix = "ventia:reply:"

// ReplyCache is the short-lived cache for windowed-conversation
// replies, keyed tenant::lang::normalized(last user message).
type ReplyCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, reply string)
}

// NewReplyCache returns a redis-backed cache when a client is given,
// an in-process TTL map otherwise.
func NewReplyCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) ReplyCache {
	if rdb != nil {
		return &redisReplyCache{rdb: rdb, ttl: ttl, logger: logger}
	}
	return &memoryReplyCache{ttl: ttl, entries: map[string]memoryCacheEntry{}}
}

type memoryCacheEntry struct {
	reply     string
	expiresAt time.Time
}

type memoryReplyCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryCacheEntry
}

func (c *memoryReplyCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return entry.reply, true
}

func (c *memoryReplyCache) Set(_ context.Context, key, reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryCacheEntry{reply: reply, expiresAt: time.Now().Add(c.ttl)}
}

type redisReplyCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func (c *redisReplyCache) Get(ctx context.Context, key string) (string, bool) {
	reply, err := c.rdb.Get(ctx, replyCachePrefix+key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.logger.Warn("reply cache read failed", zap.Error(err))
		return "", false
	}
	return reply, true
}

func (c *redisReplyCache) Set(ctx context.Context, key, reply string) {
	if err := c.rdb.Set(ctx, replyCachePrefix+key, reply, c.ttl).Err(); err != nil {
		c.logger.Warn("reply cache write failed", zap.Error(err))
	}
}
