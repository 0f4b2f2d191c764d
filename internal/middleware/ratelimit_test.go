package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/identity-service/internal/config"
)

func limitedHandler(mw echo.MiddlewareFunc) (*echo.Echo, echo.HandlerFunc) {
	e := echo.New()
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e, h
}

func doRequest(e *echo.Echo, h echo.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:4242"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/auth/login")
	_ = h(c)
	return rec
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            time.Hour,
		Prefix:         "authrl",
	}
	e, h := limitedHandler(NewTokenBucket(cfg, rdb))

	for i := 0; i < 2; i++ {
		if rec := doRequest(e, h); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
	rec := doRequest(e, h)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("blocked response carries no Retry-After header")
	}
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false}
	e, h := limitedHandler(NewTokenBucket(cfg, nil))

	for i := 0; i < 5; i++ {
		if rec := doRequest(e, h); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
}

func TestTokenBucketRefills(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: 50 * time.Millisecond,
		TTL:            time.Hour,
		Prefix:         "authrl",
	}
	e, h := limitedHandler(NewTokenBucket(cfg, rdb))

	if rec := doRequest(e, h); rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", rec.Code)
	}
	if rec := doRequest(e, h); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", rec.Code)
	}
	time.Sleep(60 * time.Millisecond)
	if rec := doRequest(e, h); rec.Code != http.StatusOK {
		t.Fatalf("request after refill: status = %d, want 200", rec.Code)
	}
}
