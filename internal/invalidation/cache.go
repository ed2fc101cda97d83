// Package invalidation provides the scope-versioned Redis cache behind the
// derived-balance and listing reads. Instead of enumerating every dependent
// query key at each mutation site, mutations bump the version counters of the
// scopes they touch; readers embed those versions in their cache keys, so a
// bump makes every dependent entry unreachable at once.
package invalidation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	versionKeyPrefix = "ledger:version:"
	// BumpChannel carries scope names whose versions changed, so replicas
	// learn about invalidations without polling.
	BumpChannel = "ledger.bump"
)

// Invalidator marks a set of scopes stale. Services depend on this interface
// so tests can record the fan-out with a fake.
type Invalidator interface {
	Bump(ctx context.Context, scopes ...string) error
}

// Cache wraps Redis based caching with per-scope versioning.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client degrades to a
// pass-through cache, which keeps handlers working when Redis is down.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current version of a scope, initialising it when missing.
func (c *Cache) Version(ctx context.Context, scope string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	key := versionKeyPrefix + scope
	ver, err := c.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, key, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes a cache key carrying the current versions of every scope
// the cached value depends on.
func (c *Cache) BuildKey(ctx context.Context, scopes []string, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	versions := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		ver, err := c.Version(ctx, scope)
		if err != nil {
			return "", err
		}
		versions = append(versions, strconv.FormatInt(ver, 10))
	}
	return fmt.Sprintf("%s:v%s", joined, strings.Join(versions, ".")), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("invalidation: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates the given scopes by incrementing their versions and
// publishing the scope names for subscribers.
func (c *Cache) Bump(ctx context.Context, scopes ...string) error {
	if c == nil || c.client == nil || len(scopes) == 0 {
		return nil
	}
	for _, scope := range scopes {
		if scope == "" {
			continue
		}
		if err := c.client.Incr(ctx, versionKeyPrefix+scope).Err(); err != nil {
			return fmt.Errorf("invalidation: bump %s: %w", scope, err)
		}
	}
	return c.client.Publish(ctx, BumpChannel, strings.Join(scopes, ",")).Err()
}

// ListenForInvalidation subscribes to bump notifications. Versions live in
// Redis itself, so subscribers only need the signal for local bookkeeping
// (metrics, warmup triggers).
func (c *Cache) ListenForInvalidation(ctx context.Context, onBump func(scopes []string)) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, BumpChannel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if onBump != nil && msg.Payload != "" {
					onBump(strings.Split(msg.Payload, ","))
				}
			}
		}
	}()
	return nil
}
