package httpcache_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmcandra/mebelshop/pkg/httpcache"
	"github.com/gmcandra/mebelshop/pkg/kv"
)

func countingHandler(calls *atomic.Int32, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	})
}

func TestCacheFirstServesStoredCopy(t *testing.T) {
	cache := httpcache.New(kv.NewMemory())
	var calls atomic.Int32

	h := cache.Middleware(httpcache.CacheFirst, time.Minute)(
		countingHandler(&calls, http.StatusOK, `{"items":[]}`))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"items":[]}`, rec.Body.String())
	}

	assert.Equal(t, int32(1), calls.Load(), "handler should run only on the first request")
}

func TestCacheFirstExpiresAfterTTL(t *testing.T) {
	cache := httpcache.New(kv.NewMemory())
	var calls atomic.Int32

	h := cache.Middleware(httpcache.CacheFirst, 10*time.Millisecond)(
		countingHandler(&calls, http.StatusOK, "v1"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/p", nil))
	time.Sleep(20 * time.Millisecond)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/p", nil))

	assert.Equal(t, int32(2), calls.Load())
}

func TestNetworkFirstFallsBackOnServerError(t *testing.T) {
	store := kv.NewMemory()
	cache := httpcache.New(store)

	var calls atomic.Int32
	ok := cache.Middleware(httpcache.NetworkFirst, 0)(
		countingHandler(&calls, http.StatusOK, "fresh"))

	// Prime the cache with a good response.
	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/catalog", nil))

	failing := cache.Middleware(httpcache.NetworkFirst, 0)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

	rec := httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fresh", rec.Body.String())
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
}

func TestNetworkFirstPropagatesErrorWithoutCache(t *testing.T) {
	cache := httpcache.New(kv.NewMemory())

	failing := cache.Middleware(httpcache.NetworkFirst, 0)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

	rec := httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestNonGETBypassesCache(t *testing.T) {
	cache := httpcache.New(kv.NewMemory())
	var calls atomic.Int32

	h := cache.Middleware(httpcache.CacheFirst, time.Minute)(
		countingHandler(&calls, http.StatusOK, "done"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/cart", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/cart", nil))

	assert.Equal(t, int32(2), calls.Load())
}

func TestQueryStringsCacheSeparately(t *testing.T) {
	cache := httpcache.New(kv.NewMemory())
	var calls atomic.Int32

	h := cache.Middleware(httpcache.CacheFirst, time.Minute)(
		countingHandler(&calls, http.StatusOK, "page"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products?page=1", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products?page=2", nil))

	assert.Equal(t, int32(2), calls.Load())
}
