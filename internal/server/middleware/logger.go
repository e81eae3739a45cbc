// Логирование HTTP-запросов
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/logger"
)

type ResponseWriter struct {
	http.ResponseWriter
	Status int
	Size   int
}

func (w *ResponseWriter) WriteHeader(Status int) {
	w.Status = Status
	w.ResponseWriter.WriteHeader(Status)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if w.Status == 0 {
		w.Status = http.StatusOK
	}
	Size, err := w.ResponseWriter.Write(b)
	w.Size += Size
	return Size, err
}

// LoggerMiddleware пишет одну строку на запрос.
// Шаблон маршрута известен только после обработки, поэтому читается после next.ServeHTTP.
func LoggerMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wr := &ResponseWriter{ResponseWriter: w}
			next.ServeHTTP(wr, r)

			if wr.Status == 0 {
				wr.Status = http.StatusOK
			}
			e := logger.RequestLog{
				RequestID:  chimw.GetReqID(r.Context()),
				Method:     r.Method,
				URI:        r.RequestURI,
				RemoteAddr: r.RemoteAddr,
				Status:     wr.Status,
				Size:       wr.Size,
				DurationMs: time.Since(start).Seconds() * 1000,
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				e.Route = rctx.RoutePattern()
			}
			log.LogRequest(e)
		})
	}
}

// RequestIDHeader возвращает request id клиенту в заголовке X-Request-Id.
// Ставится после chi middleware.RequestID.
func RequestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			w.Header().Set(chimw.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}
