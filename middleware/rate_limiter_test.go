package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvInt(t *testing.T) {
	assert.Equal(t, 5, envInt("RATE_LIMIT_TEST_UNSET", 5))

	t.Setenv("RATE_LIMIT_TEST_SET", "12")
	assert.Equal(t, 12, envInt("RATE_LIMIT_TEST_SET", 5))

	t.Setenv("RATE_LIMIT_TEST_BAD", "lots")
	assert.Equal(t, 5, envInt("RATE_LIMIT_TEST_BAD", 5))

	t.Setenv("RATE_LIMIT_TEST_NEG", "-3")
	assert.Equal(t, 5, envInt("RATE_LIMIT_TEST_NEG", 5))
}

func TestRateLimitMiddlewareThrottlesAfterBurst(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RateLimitMiddleware(next)

	var lastCode int
	for i := 0; i < limitBurst+1; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dreams", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		lastCode = rr.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}
