package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finfamily/internal/log"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := newRateLimiter(1, 2)
	defer rl.stop()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"), "burst exhausted")
	assert.True(t, rl.allow("10.0.0.2"), "other clients have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, rl.allow("10.0.0.1"), "one token refilled")
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := newRateLimiter(0, 0)
	defer rl.stop()
	assert.Equal(t, 20.0, float64(rl.limit))
	assert.Equal(t, 1, rl.burst)
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := newRateLimiter(10, 10)
	defer rl.stop()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.allow("10.0.0.1")

	now = now.Add(5 * time.Minute)
	rl.allow("10.0.0.2")

	now = now.Add(visitorTTL - time.Minute)
	assert.Equal(t, 1, rl.cleanupStaleEntries())
	assert.Len(t, rl.clients, 1)
	assert.Contains(t, rl.clients, "10.0.0.2")
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	rl := newRateLimiter(1, 1)
	done := make(chan struct{})
	go func() {
		rl.startCleanup()
		close(done)
	}()
	rl.stop()
	rl.stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup goroutine did not stop")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := newRateLimiter(0.001, 1)
	defer rl.stop()

	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		rl.middleware(log.Nop()))

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}
