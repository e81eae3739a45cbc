// Package http реализует маршрутизацию HTTP-слоя планировщика встреч.
//
// Пакет отвечает за:
//   - регистрацию HTTP-маршрутов и настройку роутера (chi);
//   - сборку цепочки middleware (request id, логирование, recover, таймаут, rate limit);
//   - JSON-ответы для неизвестных маршрутов.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/api"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/config"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/middleware"
)

// NewRouter создаёт и настраивает HTTP-роутер сервера.
//
// limiter может быть nil: тогда rate limit не применяется.
func NewRouter(h *api.Handler, cfg *config.Config, limiter middleware.Limiter) http.Handler {
	r := chi.NewRouter()

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestIDHeader)
	if cfg.Server.TrustProxy {
		r.Use(chimw.RealIP)
	}
	// логирование всех запросов
	r.Use(middleware.LoggerMiddleware(h.Log.Named("http")))
	r.Use(middleware.Recoverer(h.Log.Named("recover")))
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
	}
	if limiter != nil {
		keyFn := middleware.KeyByIP()
		if cfg.Security.RateLimit.Key == "ip_path" {
			keyFn = middleware.KeyByIPAndPath()
		}
		r.Use(middleware.RateLimit(limiter, keyFn, h.Log.Named("ratelimit")))
	}

	r.Get("/health", h.Health)

	// добавляем swagger
	if cfg.Swagger.Enabled {
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireJSON)
		r.Use(middleware.MaxBodyBytes(cfg.Server.MaxBodyBytes))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.CreateUser)
			r.Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
			r.Get("/{id}/meetings", h.ListUserMeetings)
		})

		r.Route("/meetings", func(r chi.Router) {
			r.Post("/", h.CreateMeeting)
			r.Get("/", h.ListMeetings)
			r.Get("/{id}", h.GetMeeting)
			r.Put("/{id}", h.UpdateMeeting)
			r.Delete("/{id}", h.DeleteMeeting)
		})
	})

	return r
}
