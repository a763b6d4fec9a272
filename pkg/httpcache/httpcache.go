// Package httpcache caches GET responses in a kv.Store with a per-route
// strategy, so the storefront keeps serving catalog pages when the
// database is briefly unavailable.
//
// Strategies:
//   - CacheFirst:   serve the stored copy when present and fresh; only
//     hit the handler on a miss.
//   - NetworkFirst: always run the handler; fall back to the stored copy
//     when the handler fails with a 5xx.
//
// Wire as route middleware:
//
//	cache := httpcache.New(kvStore)
//	r.Get("/api/products", "products.index", h,
//	    cache.Middleware(httpcache.CacheFirst, 5*time.Minute))
package httpcache

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gmcandra/mebelshop/pkg/kv"
	"github.com/gmcandra/mebelshop/pkg/logger"
	"github.com/gmcandra/mebelshop/pkg/metrics"
)

// Strategy selects how a cached route behaves.
type Strategy string

const (
	CacheFirst   Strategy = "cache_first"
	NetworkFirst Strategy = "network_first"
)

// Cache stores rendered responses keyed by request path and query.
type Cache struct {
	store kv.Store
}

// New creates a Cache backed by the given kv store.
func New(store kv.Store) *Cache {
	return &Cache{store: store}
}

// entry is the serialized form of a cached response.
type entry struct {
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	StoredAt    time.Time `json:"stored_at"`
}

func cacheKey(path, query string) string {
	return "httpcache:" + path + "?" + query
}

// Middleware returns route middleware applying the given strategy.
// ttl bounds freshness for CacheFirst; NetworkFirst ignores it because a
// stale copy still beats a 5xx.
func (c *Cache) Middleware(strategy Strategy, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			switch strategy {
			case CacheFirst:
				c.serveCacheFirst(w, r, next, ttl)
			default:
				c.serveNetworkFirst(w, r, next)
			}
		})
	}
}

func (c *Cache) serveCacheFirst(w http.ResponseWriter, r *http.Request, next http.Handler, ttl time.Duration) {
	if e, ok := c.lookup(r); ok && time.Since(e.StoredAt) < ttl {
		metrics.CacheHits.WithLabelValues(string(CacheFirst)).Inc()
		c.replay(w, e)
		return
	}

	metrics.CacheMisses.WithLabelValues(string(CacheFirst)).Inc()

	buf := newBufferedWriter(w)
	next.ServeHTTP(buf, r)
	buf.flush()

	if buf.status < 300 {
		c.save(r, buf.status, buf.header.Get("Content-Type"), buf.body.Bytes())
	}
}

func (c *Cache) serveNetworkFirst(w http.ResponseWriter, r *http.Request, next http.Handler) {
	buf := newBufferedWriter(w)
	next.ServeHTTP(buf, r)

	if buf.status >= 500 {
		if e, ok := c.lookup(r); ok {
			metrics.CacheHits.WithLabelValues(string(NetworkFirst)).Inc()
			c.replay(w, e)
			return
		}
	}

	metrics.CacheMisses.WithLabelValues(string(NetworkFirst)).Inc()
	buf.flush()

	if buf.status < 300 {
		c.save(r, buf.status, buf.header.Get("Content-Type"), buf.body.Bytes())
	}
}

// Invalidate drops the cached copy for a path with no query string.
// Call after admin writes so the storefront sees fresh data.
func (c *Cache) Invalidate(ctx context.Context, path string) {
	err := c.store.Delete(ctx, cacheKey(path, ""))
	if err != nil && err != kv.ErrNotFound {
		logger.Warn("httpcache: invalidate failed", "path", path, "error", err)
	}
}

func (c *Cache) lookup(r *http.Request) (entry, bool) {
	raw, err := c.store.Get(r.Context(), cacheKey(r.URL.Path, r.URL.RawQuery))
	if err != nil {
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return entry{}, false
	}
	return e, true
}

func (c *Cache) save(r *http.Request, status int, contentType string, body []byte) {
	raw, err := json.Marshal(entry{
		Status:      status,
		ContentType: contentType,
		Body:        body,
		StoredAt:    time.Now(),
	})
	if err != nil {
		return
	}
	if err := c.store.Set(r.Context(), cacheKey(r.URL.Path, r.URL.RawQuery), raw); err != nil {
		logger.Warn("httpcache: store failed", "path", r.URL.Path, "error", err)
	}
}

func (c *Cache) replay(w http.ResponseWriter, e entry) {
	if e.ContentType != "" {
		w.Header().Set("Content-Type", e.ContentType)
	}
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(e.Status)
	w.Write(e.Body) //nolint:errcheck
}

// bufferedWriter delays writing to the underlying ResponseWriter so the
// middleware can substitute the cached copy after seeing the status.
type bufferedWriter struct {
	under  http.ResponseWriter
	status int
	body   bytes.Buffer
	header http.Header
}

func newBufferedWriter(w http.ResponseWriter) *bufferedWriter {
	return &bufferedWriter{under: w, status: http.StatusOK, header: make(http.Header)}
}

func (b *bufferedWriter) Header() http.Header { return b.header }

func (b *bufferedWriter) WriteHeader(code int) { b.status = code }

func (b *bufferedWriter) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *bufferedWriter) flush() {
	for k, vals := range b.header {
		for _, v := range vals {
			b.under.Header().Add(k, v)
		}
	}
	b.under.WriteHeader(b.status)
	b.under.Write(b.body.Bytes()) //nolint:errcheck
}
