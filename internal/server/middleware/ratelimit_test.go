package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute, discardLogger())
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d should pass", i)
	}
	assert.False(t, rl.Allow("1.2.3.4"))

	// another client has its own bucket
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(2, time.Minute, discardLogger())(next)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	assert.Equal(t, "10.0.0.1:5555", clientIP(req))

	req.Header.Set("X-Real-IP", "2.2.2.2")
	assert.Equal(t, "2.2.2.2", clientIP(req))

	req.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2")
	assert.Equal(t, "1.1.1.1", clientIP(req))
}
