package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vindennt/quick-little-shop/internal/httpx"
)

type stubChecker struct{ err error }

func (s *stubChecker) Ping(_ context.Context) error { return s.err }

func health(t *testing.T, checks httpx.HealthChecks) (int, map[string]string) {
	t.Helper()
	rr := httptest.NewRecorder()
	httpx.HealthHandler(checks).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return rr.Code, resp
}

func TestHealthHandler_HealthyWithoutRedis(t *testing.T) {
	code, resp := health(t, httpx.HealthChecks{Backend: &stubChecker{}})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "disabled", resp["redis"])
}

func TestHealthHandler_BackendDown(t *testing.T) {
	code, resp := health(t, httpx.HealthChecks{
		Backend: &stubChecker{err: errors.New("conn refused")},
		Redis:   &stubChecker{},
	})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", resp["status"])
	assert.Equal(t, "unreachable", resp["backend"])
	assert.Equal(t, "ok", resp["redis"])
}

func TestHealthHandler_RedisDown(t *testing.T) {
	code, resp := health(t, httpx.HealthChecks{
		Backend: &stubChecker{},
		Redis:   &stubChecker{err: errors.New("timeout")},
	})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unreachable", resp["redis"])
}

func TestJSON_SetsHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusCreated, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.JSONEq(t, `{"id":"abc"}`, w.Body.String())
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, httpx.BearerToken(r))

	r.Header.Set("Authorization", "Bearer abc.def")
	assert.Equal(t, "abc.def", httpx.BearerToken(r))

	r.Header.Set("Authorization", "Basic xyz")
	assert.Empty(t, httpx.BearerToken(r))
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, httpx.ParseOrigins(""))
	assert.Equal(t, []string{"https://a.example", "http://localhost:3000"},
		httpx.ParseOrigins(" https://a.example , http://localhost:3000,"))
}

func TestNewRouter_SecurityHeadersAndRequestID(t *testing.T) {
	pass := func(next http.Handler) http.Handler { return next }
	r := httpx.NewRouter(httpx.ServerConfig{IsDevelopment: true, CORSAllowedOrigins: "*"}, pass, pass, pass)
	r.Get("/x", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "default-src 'self'")
}
