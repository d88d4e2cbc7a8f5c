package httputil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/depforce/pkg/cache"
	"github.com/matzehuels/depforce/pkg/errors"
)

// Cache stores JSON-encoded responses in a [cache.Cache] backend.
//
// Keys are derived with [cache.Keyer.HTTPKey] from the namespace and the
// caller's key. Namespace returns a view with a longer namespace sharing
// the same backend and TTL:
//
//	rc := httputil.NewCache(backend, nil, "analyze", time.Minute)
//	rc.Namespace("v2").Set(ctx, url, resp)  // namespace "analyze/v2"
type Cache struct {
	backend   cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
}

// NewCache wraps backend. A nil keyer uses [cache.DefaultKeyer].
func NewCache(backend cache.Cache, keyer cache.Keyer, namespace string, ttl time.Duration) *Cache {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cache{backend: backend, keyer: keyer, namespace: namespace, ttl: ttl}
}

// TTL returns the time-to-live applied by Set.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get decodes the entry for key into v. It reports a miss as (false, nil);
// an undecodable entry is deleted and reported as a miss.
func (c *Cache) Get(ctx context.Context, key string, v any) (bool, error) {
	k := c.keyer.HTTPKey(c.namespace, key)
	data, ok, err := c.backend.Get(ctx, k)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.backend.Delete(ctx, k)
		return false, nil
	}
	return true, nil
}

// Set encodes v and stores it under key.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCacheError, err, "encode response for %s", key)
	}
	return c.backend.Set(ctx, c.keyer.HTTPKey(c.namespace, key), data, c.ttl)
}

// Delete drops the entry for key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.backend.Delete(ctx, c.keyer.HTTPKey(c.namespace, key))
}

// Namespace returns a view whose namespace is extended by sub.
func (c *Cache) Namespace(sub string) *Cache {
	ns := sub
	if c.namespace != "" {
		ns = c.namespace + "/" + sub
	}
	return &Cache{backend: c.backend, keyer: c.keyer, namespace: ns, ttl: c.ttl}
}
