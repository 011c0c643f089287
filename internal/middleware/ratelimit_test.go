package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ecoles/schoolmanager/internal/cache"
)

func rateLimitedRouter(store RateStore, max int) *gin.Engine {
	r := gin.New()
	r.GET("/login", RateLimit(store, max, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func hit(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMemoryStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := rateLimitedRouter(NewMemoryRateStore(ctx), 2)

	require.Equal(t, http.StatusOK, hit(r).Code)
	w := hit(r)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = hit(r)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestMemoryRateStoreWindowReset(t *testing.T) {
	now := time.Now()
	store := &memoryRateStore{data: map[string]*memoryCounter{}, clock: func() time.Time { return now }}

	count, _, err := store.Increment(context.Background(), "k", time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	now = now.Add(2 * time.Second)
	count, ttl, err := store.Increment(context.Background(), "k", time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, time.Second, ttl)
}

func TestRateLimitRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	redisStore, err := cache.NewRedisStore(client)
	require.NoError(t, err)
	r := rateLimitedRouter(NewCacheRateStore(redisStore), 1)

	require.Equal(t, http.StatusOK, hit(r).Code)
	require.Equal(t, http.StatusTooManyRequests, hit(r).Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	redisStore, err := cache.NewRedisStore(client)
	require.NoError(t, err)
	r := rateLimitedRouter(NewCacheRateStore(redisStore), 1)
	require.Equal(t, http.StatusOK, hit(r).Code)
	require.Equal(t, http.StatusOK, hit(r).Code)
}
