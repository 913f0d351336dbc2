package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/quicklendar/internal/cache"
	mw "github.com/dropDatabas3/quicklendar/internal/http/middlewares"
	"github.com/dropDatabas3/quicklendar/internal/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestWithRateLimit_DeniesOverLimit(t *testing.T) {
	limiter := rate.NewWindowLimiter(cache.NewMemory(cache.Config{}), "rl:login", 2, time.Hour)
	handler := mw.WithRateLimit(limiter, "login")(okHandler())

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/v1/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, do().Code)
	require.Equal(t, http.StatusOK, do().Code)

	rec := do()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestWithRateLimit_PerIP(t *testing.T) {
	limiter := rate.NewWindowLimiter(cache.NewMemory(cache.Config{}), "rl:login", 1, time.Hour)
	handler := mw.WithRateLimit(limiter, "login")(okHandler())

	do := func(addr string) int {
		req := httptest.NewRequest("POST", "/v1/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("10.0.0.1:5555"))
	require.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:6666"))
	// otra IP tiene su propio contador
	require.Equal(t, http.StatusOK, do("10.0.0.2:5555"))
}

func TestWithRateLimit_ForwardedFor(t *testing.T) {
	limiter := rate.NewWindowLimiter(cache.NewMemory(cache.Config{}), "rl:login", 1, time.Hour)
	handler := mw.WithRateLimit(limiter, "login")(okHandler())

	do := func(xff string) int {
		req := httptest.NewRequest("POST", "/v1/auth/login", nil)
		req.RemoteAddr = "127.0.0.1:1234" // el proxy
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("203.0.113.7"))
	// misma IP real aunque cambie la cadena de proxies
	require.Equal(t, http.StatusTooManyRequests, do("203.0.113.7, 10.0.0.9"))
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(ctx context.Context, key string) (rate.Result, error) {
	return rate.Result{}, errors.New("backend down")
}

func TestWithRateLimit_FailOpen(t *testing.T) {
	handler := mw.WithRateLimit(brokenLimiter{}, "login")(okHandler())

	req := httptest.NewRequest("POST", "/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
