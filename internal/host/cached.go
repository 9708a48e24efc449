package host

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Fetcher is the read side of a host.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Cached wraps a fetcher and keeps the first successful answer for a fixed
// set of URLs. Concurrent fetches of a cached URL share one request.
// Other URLs pass through.
type Cached struct {
	next  Fetcher
	urls  []string
	group singleflight.Group

	mu    sync.RWMutex
	cache map[string][]byte
}

// NewCached caches urls on top of next.
func NewCached(next Fetcher, urls ...string) *Cached {
	return &Cached{
		next:  next,
		urls:  slices.Clone(urls),
		cache: make(map[string][]byte, len(urls)),
	}
}

// Fetch serves cached URLs from memory once fetched.
func (c *Cached) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !slices.Contains(c.urls, url) {
		return c.next.Fetch(ctx, url)
	}

	c.mu.RLock()
	data, ok := c.cache[url]
	c.mu.RUnlock()

	if ok {
		return data, nil
	}

	v, err, _ := c.group.Do(url, func() (any, error) {
		data, err := c.next.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[url] = data
		c.mu.Unlock()

		return data, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]byte), nil
}

// Forget drops every cached answer.
func (c *Cached) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.cache)
}
