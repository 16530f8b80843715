package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MIDDLEWARE AND ROUTING TEST SUITE
// ============================================================================

func TestMiddlewareAndRoutingSuite(t *testing.T) {
	env := newTestEnv(t, nil)

	t.Run("CORS Allowed Origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://127.0.0.1:5173")
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://127.0.0.1:5173", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("CORS Foreign Origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("OPTIONS Preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/recommendations", nil)
		req.Header.Set("Origin", "http://localhost:3001")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)

		assert.Less(t, w.Code, 300)
		assert.Equal(t, "http://localhost:3001", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Request ID Minted", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/health", "", nil)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("Request ID Reused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "req-123")
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	})

	t.Run("Health", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]string{"status": "ok"}, decodeBody[map[string]string](t, w))
	})

	t.Run("Metrics", func(t *testing.T) {
		env.do(t, http.MethodGet, "/recommendations", env.tokens["m-1"], nil)
		w := env.do(t, http.MethodGet, "/metrics", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "http_requests_total")
		assert.Contains(t, body, `route="/recommendations"`)
		assert.Contains(t, body, "compat_evaluations_total")
	})

	t.Run("Unknown Route", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
