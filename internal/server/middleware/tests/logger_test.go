package tests

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/logger"
)

// Статус по умолчанию и размер
func TestResponseWriter_Write_DefaultStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &middleware.ResponseWriter{ResponseWriter: rr}

	body := []byte("hello")
	n, err := w.Write(body)

	require.NoError(t, err)
	require.Equal(t, len(body), n)
	require.Equal(t, http.StatusOK, w.Status)
	require.Equal(t, len(body), w.Size)
}

// вспомогательная функция
func testHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

// проверка корректного прохода статуса и тела через мидлу
func TestLoggerMiddleware(t *testing.T) {
	mw := middleware.LoggerMiddleware(logger.NewNop())

	handler := mw(testHandler(http.StatusTeapot, "tea"))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusTeapot, rr.Code)
	require.Equal(t, "tea", rr.Body.String())
}

// строка запроса попадает в файл лога вместе с request id
func TestLoggerMiddleware_WritesRequestLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "http.log")
	opts := logger.DefaultOptions()
	opts.File = path
	opts.Stdout = false
	opts.Format = "json"

	log, err := logger.New(opts)
	require.NoError(t, err)

	handler := chimw.RequestID(middleware.LoggerMiddleware(log)(testHandler(http.StatusCreated, "ok")))

	req := httptest.NewRequest(http.MethodPost, "/api/users?x=1", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "/api/users?x=1")
	require.Contains(t, string(data), "POST")
	require.Contains(t, string(data), "request_id")
}

// X-Request-Id возвращается клиенту
func TestRequestIDHeader(t *testing.T) {
	handler := chimw.RequestID(middleware.RequestIDHeader(testHandler(http.StatusOK, "")))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	// входящий id сохраняется
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, "abc-123", rr.Header().Get("X-Request-Id"))
}

// шаблон маршрута chi попадает в лог, 5xx пишется с уровнем error
func TestLoggerMiddleware_RoutePatternAndLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "http.log")
	opts := logger.DefaultOptions()
	opts.File = path
	opts.Stdout = false
	opts.Format = "json"

	log, err := logger.New(opts)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.LoggerMiddleware(log))
	r.Get("/api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users/42", nil))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"route":"/api/users/{id}"`)
	require.Contains(t, string(data), `"level":"error"`)
	require.Contains(t, string(data), `"status":500`)
}
