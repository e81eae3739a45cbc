package tests

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"
)

func doGet(h http.Handler, path, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remote
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// burst=2: третий запрос подряд получает 429
func TestRateLimit_Local(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	lim := middleware.NewLocalLimiter(ctx, 0.001, 2, time.Minute)
	h := middleware.RateLimit(lim, middleware.KeyByIP(), logger.NewNop())(testHandler(http.StatusOK, "ok"))

	require.Equal(t, http.StatusOK, doGet(h, "/a", "10.0.0.1:1111").Code)
	rr := doGet(h, "/b", "10.0.0.1:2222")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	rr = doGet(h, "/c", "10.0.0.1:3333")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.NotEmpty(t, rr.Header().Get("Retry-After"))

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Equal(t, "TOO_MANY_REQUESTS", body.Code)
	require.Equal(t, models.StatusError, body.Status)

	// другой IP — свой бакет
	require.Equal(t, http.StatusOK, doGet(h, "/a", "10.0.0.2:1111").Code)
}

// ключ ip_path: разные пути лимитируются независимо
func TestRateLimit_KeyByIPAndPath(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	lim := middleware.NewLocalLimiter(ctx, 0.001, 1, time.Minute)
	h := middleware.RateLimit(lim, middleware.KeyByIPAndPath(), logger.NewNop())(testHandler(http.StatusOK, "ok"))

	require.Equal(t, http.StatusOK, doGet(h, "/a", "10.0.0.1:1").Code)
	require.Equal(t, http.StatusTooManyRequests, doGet(h, "/a", "10.0.0.1:1").Code)
	require.Equal(t, http.StatusOK, doGet(h, "/b", "10.0.0.1:1").Code)
}

func TestKeyFuncs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.RemoteAddr = "192.168.1.5:5000"

	require.Equal(t, "rl:ip:192.168.1.5", middleware.KeyByIP()(req))
	require.Equal(t, "rl:path:/api/users:ip:192.168.1.5", middleware.KeyByIPAndPath()(req))
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (middleware.Decision, error) {
	return middleware.Decision{}, errors.New("boom")
}

// Ошибка лимитера: запрос пропускается
func TestRateLimit_FailOpen(t *testing.T) {
	h := middleware.RateLimit(failingLimiter{}, middleware.KeyByIP(), logger.NewNop())(testHandler(http.StatusOK, "ok"))

	rr := doGet(h, "/", "10.0.0.1:1")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
}

// Недоступный Redis: fail-open
func TestRedisLimiter_Unreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })

	lim := middleware.NewRedisLimiter(rdb, 5, time.Minute)
	_, err := lim.Allow(context.Background(), "rl:test")
	require.Error(t, err)

	h := middleware.RateLimit(lim, middleware.KeyByIP(), logger.NewNop())(testHandler(http.StatusOK, "ok"))
	require.Equal(t, http.StatusOK, doGet(h, "/", "10.0.0.1:1").Code)
}

// Интеграционный тест: фиксированное окно в Redis
func TestRedisLimiter_Window(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping integration test")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })

	ctx := context.Background()
	key := "rl:test:" + uuid.NewString()
	t.Cleanup(func() { rdb.Del(ctx, key) })

	lim := middleware.NewRedisLimiter(rdb, 3, time.Minute)
	for i := 0; i < 3; i++ {
		d, err := lim.Allow(ctx, key)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.Equal(t, 3-i-1, d.Remaining)
	}

	d, err := lim.Allow(ctx, key)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Greater(t, d.Reset, time.Duration(0))
}

// Content-Type: только application/json для методов с телом
func TestRequireJSON(t *testing.T) {
	h := middleware.RequireJSON(testHandler(http.StatusOK, "ok"))

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"post json", http.MethodPost, "application/json", http.StatusOK},
		{"post json charset", http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{"post text", http.MethodPost, "text/plain", http.StatusBadRequest},
		{"put missing", http.MethodPut, "", http.StatusBadRequest},
		{"patch form", http.MethodPatch, "application/x-www-form-urlencoded", http.StatusBadRequest},
		{"get without", http.MethodGet, "", http.StatusOK},
		{"delete without", http.MethodDelete, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/users", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusBadRequest {
				require.Contains(t, rr.Body.String(), "INVALID_CONTENT_TYPE")
			}
		})
	}
}

// Тело больше лимита: чтение завершается ошибкой
func TestMaxBodyBytes(t *testing.T) {
	var readErr error
	h := middleware.MaxBodyBytes(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		for readErr == nil {
			_, readErr = r.Body.Read(buf)
		}
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 32)))
	h.ServeHTTP(httptest.NewRecorder(), req)

	var mbe *http.MaxBytesError
	require.ErrorAs(t, readErr, &mbe)
}
