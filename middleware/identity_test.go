package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityEcho(t *testing.T) (http.Handler, *int64) {
	t.Helper()
	var captured int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserID(r.Context())
		require.True(t, ok)
		captured = id
		w.WriteHeader(http.StatusOK)
	})
	return IdentityMiddleware(next), &captured
}

func TestIdentityMiddlewarePassesUserID(t *testing.T) {
	h, captured := identityEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress", nil)
	req.Header.Set("X-User-ID", "42")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(42), *captured)
}

func TestIdentityMiddlewareRejectsMissingHeader(t *testing.T) {
	h, _ := identityEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/progress", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "X-User-ID header required")
}

func TestIdentityMiddlewareRejectsBadValues(t *testing.T) {
	for _, bad := range []string{"abc", "-5", "0", "1.5"} {
		h, _ := identityEcho(t)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User-ID", bad)
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "value %q should be rejected", bad)
	}
}

func TestGetUserIDWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserID(req.Context())
	assert.False(t, ok)
}
