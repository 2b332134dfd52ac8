// Package resource memoizes HTTP GET bodies, and S3 objects, behind async
// computeds.
//
// A Cache is an explicit service: create it once, hand it to the components
// that fetch, and Clear it when cached bodies should be dropped. Nothing is
// cached at package level.
package resource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vango-dev/uielement/pkg/reactive"
)

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Option configures a Cache.
type Option func(*Cache)

// WithClient sets the HTTP client (default: http.DefaultClient).
func WithClient(client *http.Client) Option {
	return func(c *Cache) {
		c.client = client
	}
}

// WithTimeout bounds each request. Zero means no timeout beyond the
// client's own.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) {
		c.timeout = d
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// Cache memoizes successful response bodies per URL. Concurrent requests for
// the same URL share one round trip. Failures are not cached.
type Cache struct {
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
	objects ObjectGetter

	group  singleflight.Group
	mu     sync.Mutex
	bodies map[string]string
}

// NewCache creates an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		client: http.DefaultClient,
		logger: slog.Default(),
		bodies: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns an async computed holding the body at url(). It is Unset
// until the first response arrives; when url() changes the previous request
// is cancelled. An empty URL resolves to the empty string without a request.
func (c *Cache) Fetch(url func() string) *reactive.Computed[string] {
	return reactive.NewAsyncComputed(url, c.Get)
}

// Get returns the body at url, from the cache when present. A caller whose
// ctx ends stops waiting; the shared request keeps running for the others.
func (c *Cache) Get(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", nil
	}
	if body, ok := c.cached(url); ok {
		return body, nil
	}

	// The shared request is detached from the first caller's cancellation so
	// that other waiters still get a result.
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(url, func() (any, error) {
		if body, ok := c.cached(url); ok {
			return body, nil
		}
		body, err := c.request(detached, url)
		if err != nil {
			c.logger.Warn("fetch failed", "url", url, "error", err)
			return "", err
		}
		c.mu.Lock()
		c.bodies[url] = body
		c.mu.Unlock()
		return body, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Cache) cached(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	body, ok := c.bodies[url]
	return body, ok
}

func (c *Cache) request(ctx context.Context, url string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if bucket, key, ok, err := parseS3URL(url); ok {
		if err != nil {
			return "", err
		}
		return c.getObject(ctx, url, bucket, key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}

// Len returns the number of cached bodies.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bodies)
}

// Clear drops every cached body. Requests in flight are not affected.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bodies = make(map[string]string)
}
