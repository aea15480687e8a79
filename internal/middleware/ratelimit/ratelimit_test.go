package ratelimit

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/log"
)

func TestLimiterBurstThenDeny(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerSecond: 0.001, Burst: 3})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d", i)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "clients are limited independently")
	assert.Equal(t, 2, rl.ActiveClients())
	assert.Greater(t, rl.RetryAfter("1.2.3.4"), time.Duration(0))
}

func TestCleanupStaleEntries(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	defer rl.Stop()

	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 0, rl.cleanupStaleEntries(time.Now()))
	assert.Equal(t, 2, rl.cleanupStaleEntries(time.Now().Add(limiterTTL+time.Minute)))
	assert.Equal(t, 0, rl.ActiveClients())
}

func TestSweepLogsThroughConfiguredLogger(t *testing.T) {
	var buf bytes.Buffer
	rl := NewLimiter(Config{Logger: log.New(log.Config{Output: &buf, Format: "json", Level: slog.LevelDebug, Component: log.ComponentHTTP})})
	defer rl.Stop()

	rl.sweep(time.Now())
	assert.Empty(t, buf.String(), "nothing removed, nothing logged")

	rl.Allow("a")
	rl.sweep(time.Now().Add(limiterTTL + time.Minute))
	assert.Contains(t, buf.String(), `"msg":"Cleaned up stale rate limiters"`)
	assert.Contains(t, buf.String(), `"component":"http"`)
	assert.Contains(t, buf.String(), `"removed":1`)
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}

func TestMiddlewareLimitsWritesOnly(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerSecond: 0.001, Burst: 1})
	defer rl.Stop()

	h := rl.Middleware(func(*http.Request) string { return "client" }, WritesOnly, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)

	do := func(method string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/api/transactions", nil))
		return rr
	}

	require.Equal(t, http.StatusNoContent, do(http.MethodPost).Code)
	rr := do(http.MethodPost)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, do(http.MethodGet).Code)
	}
}
