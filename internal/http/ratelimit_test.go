package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newClockedLimiter(cfg RateLimitConfig) (*RateLimiter, *time.Time) {
	l := NewRateLimiter(cfg)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestRateLimiter_AllowBurstThenRefill(t *testing.T) {
	l, now := newClockedLimiter(RateLimitConfig{PerMinute: 6, Burst: 3})

	for i := range 3 {
		assert.True(t, l.Allow("1.2.3.4"), "attempt %d", i+1)
	}
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"), "buckets are per client")

	*now = now.Add(10 * time.Second)
	assert.True(t, l.Allow("1.2.3.4"), "one token refills every 10s at 6/min")
	assert.False(t, l.Allow("1.2.3.4"))
}

func TestRateLimiter_Sweep(t *testing.T) {
	l, now := newClockedLimiter(RateLimitConfig{IdleTTL: time.Minute})
	l.Allow("old")
	*now = now.Add(45 * time.Second)
	l.Allow("recent")
	*now = now.Add(30 * time.Second)

	assert.Equal(t, 1, l.Sweep())
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "recent")
}

func TestRateLimiter_Middleware(t *testing.T) {
	l, _ := newClockedLimiter(RateLimitConfig{Burst: 1})
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limited")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:51234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "10.0.0.9", clientIP(req, false))
	assert.Equal(t, "203.0.113.7", clientIP(req, true))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "10.0.0.9", clientIP(req, true))

	req.RemoteAddr = "unix-socket"
	assert.Equal(t, "unix-socket", clientIP(req, false))
}
