package token

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RevokedTokenCache remembers revoked access tokens by jti until they
// would have expired anyway.
type RevokedTokenCache interface {
	Add(jti string, exp time.Time) error
	IsRevoked(jti string) bool
	Cleanup() // drops expired entries
}

type InMemoryRevokedTokenCache struct {
	revoked map[string]time.Time
	now     func() time.Time
	mu      sync.RWMutex
}

func NewInMemoryRevokedTokenCache() *InMemoryRevokedTokenCache {
	return &InMemoryRevokedTokenCache{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (c *InMemoryRevokedTokenCache) Add(jti string, exp time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[jti] = exp
	return nil
}

func (c *InMemoryRevokedTokenCache) IsRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[jti]
	return exists
}

func (c *InMemoryRevokedTokenCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for jti, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, jti)
		}
	}
}

// RedisRevokedTokenCache shares revocations between backend instances.
// Entries carry a TTL so redis does the cleanup.
type RedisRevokedTokenCache struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisRevokedTokenCache(client redis.UniversalClient, prefix string) *RedisRevokedTokenCache {
	return &RedisRevokedTokenCache{client: client, prefix: prefix, now: time.Now}
}

func (c *RedisRevokedTokenCache) key(jti string) string {
	return c.prefix + ":revoked:" + jti
}

func (c *RedisRevokedTokenCache) Add(jti string, exp time.Time) error {
	ttl := exp.Sub(c.now())
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(context.Background(), c.key(jti), exp.Unix(), ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to store revoked token")
	}
	return nil
}

// IsRevoked treats a redis failure as revoked.
func (c *RedisRevokedTokenCache) IsRevoked(jti string) bool {
	n, err := c.client.Exists(context.Background(), c.key(jti)).Result()
	if err != nil {
		return true
	}
	return n > 0
}

func (c *RedisRevokedTokenCache) Cleanup() {}
