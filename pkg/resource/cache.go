package resource

import (
	"context"
	"sync"
	"time"
)

// Cache deduplicates resources by key. Create one per request so that every
// component loading the same key shares one fetch, or share one across
// requests with a stale time.
type Cache struct {
	ctx       context.Context
	staleTime time.Duration

	mu      sync.Mutex
	entries map[string]aborter
}

type aborter interface {
	abort()
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// StaleTime lets a loaded value be reused for d before it is fetched again.
// With zero, the default, loaded values never go stale.
func StaleTime(d time.Duration) CacheOption {
	return func(c *Cache) {
		c.staleTime = d
	}
}

// NewCache creates a cache whose fetches run under ctx.
func NewCache(ctx context.Context, opts ...CacheOption) *Cache {
	if ctx == nil {
		ctx = context.Background()
	}
	c := &Cache{ctx: ctx, entries: make(map[string]aborter)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Len returns the number of cached resources.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close cancels every cached fetch, whoever is waiting on it, and empties
// the cache.
func (c *Cache) Close() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]aborter)
	c.mu.Unlock()

	for _, e := range entries {
		e.abort()
	}
}

// Option configures a resource created by Load.
type Option func(*loadOptions)

type loadOptions struct {
	retryCount int
	retryDelay time.Duration
	clientOnly bool
	onError    func(error)
}

// WithRetry retries a failed fetch count times, waiting delay between tries.
func WithRetry(count int, delay time.Duration) Option {
	return func(o *loadOptions) {
		o.retryCount = count
		o.retryDelay = delay
	}
}

// WithClientOnly marks the resource as only loadable in the browser. The
// fetcher is never called on the server and the enclosing boundary renders
// its fallback.
func WithClientOnly() Option {
	return func(o *loadOptions) {
		o.clientOnly = true
	}
}

// OnError registers a callback to be called when loading fails.
func OnError(fn func(error)) Option {
	return func(o *loadOptions) {
		o.onError = fn
	}
}

// Load returns a handle on the resource cached under key, starting fetch if
// there is none, or if the cached one failed, went stale or was abandoned
// by every earlier caller. A cached resource of a different type is
// replaced.
//
// Joining a cached resource merges options: the largest retry count wins
// and every OnError callback runs. WithClientOnly is decided by the caller
// that started the fetch.
func Load[T any](c *Cache, key string, fetch func(ctx context.Context) (T, error), opts ...Option) *Resource[T] {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.entries[key]; ok {
		if e, ok := cached.(*entry[T]); ok && e.join(c.staleTime, o) {
			return &Resource[T]{shared: e}
		}
	}

	e := &entry[T]{
		key:        key,
		retryCount: o.retryCount,
		retryDelay: o.retryDelay,
		waiters:    1,
	}
	if o.onError != nil {
		e.onError = []func(error){o.onError}
	}
	e.start(c.ctx, fetch, o.clientOnly)
	c.entries[key] = e
	return &Resource[T]{shared: e}
}
