// Package api реализует HTTP-слой планировщика встреч.
//
// Пакет отвечает за:
//   - разбор и валидацию входящих запросов (JSON, query, path);
//   - вызов сервисного слоя и формирование ответов в едином конверте;
//   - маппинг доменных ошибок в HTTP-статусы и коды ответа.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service"
	serr "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/models"
)

const (
	JsonContentType string = "application/json"
	ContentType     string = "Content-Type"
)

// коды ошибок в теле ответа
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeMeetingNotFound    = "MEETING_NOT_FOUND"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeSchedulingConflict = "SCHEDULING_CONFLICT"
	CodeInternal           = "INTERNAL_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInvalidContentType = "INVALID_CONTENT_TYPE"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
)

// Handler агрегирует зависимости HTTP-слоя и предоставляет методы-хендлеры.
//
// Handler содержит:
//   - Svc: сервисный слой (бизнес-логика);
//   - Log: логгер для записи неожиданных ошибок;
//   - Validate: валидатор DTO запросов.
type Handler struct {
	Svc      *service.Services
	Log      *logger.Logger
	Validate *validator.Validate
}

// NewHandler создаёт экземпляр Handler с переданными зависимостями.
func NewHandler(svc *service.Services, log *logger.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		Log:      log,
		Validate: NewValidator(),
	}
}

// WriteJSON пишет тело ответа в формате JSON.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(ContentType, JsonContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Вспомогательная функция вывода ошибки
func WriteError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	WriteJSON(w, status, models.ErrorResponse{
		Status:  models.StatusError,
		Code:    code,
		Message: message,
		Details: details,
	})
}

// writeServiceError маппит доменную ошибку на ответ.
// Неожиданные ошибки логируются вместе с request id, наружу уходит только INTERNAL_ERROR.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, serr.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, CodeUserNotFound, "User not found", nil)
	case errors.Is(err, serr.ErrMeetingNotFound):
		WriteError(w, http.StatusNotFound, CodeMeetingNotFound, "Meeting not found", nil)
	case errors.Is(err, serr.ErrDuplicateEmail):
		WriteError(w, http.StatusConflict, CodeDuplicateEmail, "email must be unique", nil)
	case errors.Is(err, serr.ErrSchedulingConflict):
		WriteError(w, http.StatusConflict, CodeSchedulingConflict, "Time slot already booked", nil)
	case errors.Is(err, serr.ErrInvalidTimeRange):
		WriteError(w, http.StatusBadRequest, CodeValidation, msgInvalidTimeRange, nil)
	case errors.Is(err, serr.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, CodeValidation, msgInvalidData, nil)
	default:
		h.Log.Error(op+" failed",
			zap.Error(err),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		WriteError(w, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred", nil)
	}
}

// NotFound — JSON-ответ для неизвестного маршрута.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, CodeNotFound, "Route "+r.Method+" "+r.URL.Path+" not found", nil)
}

// MethodNotAllowed — JSON-ответ для известного пути с неподдерживаемым методом.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method "+r.Method+" not allowed for "+r.URL.Path, nil)
}
