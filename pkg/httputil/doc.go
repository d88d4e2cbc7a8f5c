// Package httputil provides the HTTP plumbing used to talk to the
// dependency analyzer.
//
// # Overview
//
//   - [Client]: a rate-limited HTTP client that classifies failures into
//     error codes and marks transient ones retryable
//   - [Retry]: exponential backoff for errors wrapped with [Retryable]
//   - [Cache]: JSON response caching on top of any [cache.Cache] backend
//
// # Retry
//
// Only errors wrapped with [Retryable] are retried: connection failures,
// 429 and 5xx responses. A numeric Retry-After header overrides the backoff
// delay. Any other 4xx response fails immediately.
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return client.GetJSON(ctx, url, &out)
//	})
//
// # Caching
//
// [Cache] namespaces keys through a [cache.Keyer] so HTTP responses never
// collide with layouts or artifacts stored in the same backend:
//
//	rc := httputil.NewCache(backend, nil, "analyze", 10*time.Minute)
//	ok, err := rc.Get(ctx, url, &graph)
package httputil
