package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Namespace is a typed cache keyspace. Each namespace carries its own TTL so
// callers cannot invent ad-hoc string keys with unbounded lifetimes.
type Namespace string

const (
	// NamespaceBranchValidation caches branch-existence lookups.
	NamespaceBranchValidation Namespace = "branch-validation"
	// NamespaceInteractionHolding parks interactions whose notification
	// record is not (yet) visible, so the user-facing action still lands.
	NamespaceInteractionHolding Namespace = "interaction-holding"
)

var namespaceTTL = map[Namespace]time.Duration{
	NamespaceBranchValidation:   10 * time.Minute,
	NamespaceInteractionHolding: 24 * time.Hour,
}

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a thin namespace-aware wrapper over Redis. Values are JSON.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr, password string) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Cache{client: client}, nil
}

func (c *Cache) key(ns Namespace, key string) string {
	return string(ns) + ":" + key
}

// Set stores value under the namespace's TTL.
func (c *Cache) Set(ctx context.Context, ns Namespace, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(ns, key), data, namespaceTTL[ns]).Err()
}

// Get unmarshals the cached value into out.
func (c *Cache) Get(ctx context.Context, ns Namespace, key string, out interface{}) error {
	data, err := c.client.Get(ctx, c.key(ns, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, out)
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, ns Namespace, key string) error {
	return c.client.Del(ctx, c.key(ns, key)).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}
